// Package recommend orchestrates embedding, the vector index, and the video
// store into the recommendation API.
package recommend

import (
	"strings"

	"github.com/hyperjump/susume/pkg/utils"
)

// TextBounds limits how much of each field goes into the embedding text.
type TextBounds struct {
	Summary     int
	Transcript  int
	Description int
}

// DefaultTextBounds matches the recommend config defaults.
var DefaultTextBounds = TextBounds{Summary: 300, Transcript: 800, Description: 300}

// BuildEmbeddingText combines video fields into the text that gets embedded.
// Title always leads. The transcript is the actual spoken content and the
// strongest similarity signal, so it is included whenever present; the
// description is only a fallback for videos without a transcript yet.
// Non-empty parts are joined with " | ".
func BuildEmbeddingText(title, description, summary, transcript string, b TextBounds) string {
	parts := []string{title}

	if summary != "" {
		parts = append(parts, utils.Truncate(summary, b.Summary))
	}
	if transcript != "" {
		parts = append(parts, utils.Truncate(utils.CollapseWhitespace(transcript), b.Transcript))
	} else if description != "" {
		parts = append(parts, utils.Truncate(utils.CollapseWhitespace(description), b.Description))
	}

	return strings.Join(parts, " | ")
}

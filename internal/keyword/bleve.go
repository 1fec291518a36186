// Package keyword provides exact-word search over the stored video library
// using Bleve, complementing the semantic index for literal lookups.
package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/susume/internal/models"
)

// Result is a single keyword hit.
type Result struct {
	VideoID string  `json:"video_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}

// indexedVideo is the subset of video fields Bleve indexes. Transcripts and
// summaries stay out: long free text belongs to the semantic index.
type indexedVideo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ChannelName string `json:"channel_name"`
}

// BleveIndex is a keyword index over video titles, descriptions, and channels.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused; remove the directory to force a full rebuild after a
// mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a query like
	// "rust" matches the exact word in titles.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("channel_name", textFieldMapping)
	im.AddDocumentMapping("video", docMapping)
	im.DefaultType = "video"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a video's searchable fields under its id.
func (b *BleveIndex) Index(ctx context.Context, video *models.Video) error {
	return b.index.Index(video.VideoID, &indexedVideo{
		Title:       video.Title,
		Description: video.Description,
		ChannelName: video.ChannelName,
	})
}

// Delete removes a video from the index.
func (b *BleveIndex) Delete(ctx context.Context, videoID string) error {
	return b.index.Delete(videoID)
}

// Search runs a match query over all indexed fields and returns up to limit
// hits with their stored titles resolved from the hit fields.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"title"}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &Result{VideoID: hit.ID, Score: hit.Score}
		if title, ok := hit.Fields["title"].(string); ok {
			r.Title = title
		}
		results = append(results, r)
	}
	return results, nil
}

// Count returns the number of indexed videos.
func (b *BleveIndex) Count() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

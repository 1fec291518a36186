// Package videosearch provides the external video search collaborator used by
// global discovery.
package videosearch

import "context"

// Candidate is one video returned by the external search platform.
type Candidate struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	ChannelName  string `json:"channel_name"`
	PublishedAt  string `json:"published_at"`
}

// Searcher searches an external video platform. Implementations may return
// fewer candidates than requested; transient failures surface as errors and
// are downgraded to "zero candidates" by the discovery layer.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]*Candidate, error)
}

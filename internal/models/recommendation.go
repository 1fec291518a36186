package models

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery marks malformed client input (k out of range, query too
// short). Handlers map it to a 400 before any embedding or search work runs.
var ErrInvalidQuery = errors.New("invalid query")

// IndexVideoRequest is the request body for adding a video to the index.
// When only VideoID is set, the remaining fields are resolved from the video store.
type IndexVideoRequest struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Transcript   string `json:"transcript,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ChannelName  string `json:"channel_name,omitempty"`
}

// Validate ensures the request names a video.
func (r *IndexVideoRequest) Validate() error {
	if r.VideoID == "" {
		return fmt.Errorf("%w: video_id is required", ErrInvalidQuery)
	}
	return nil
}

// SimilarQuery is a video-to-video similarity request.
type SimilarQuery struct {
	VideoID string `json:"video_id"`
	K       int    `json:"k,omitempty"`
}

// Validate normalizes K to defaultK when unset and rejects out-of-range values.
func (q *SimilarQuery) Validate(defaultK, maxK int) error {
	if q.VideoID == "" {
		return fmt.Errorf("%w: video_id is required", ErrInvalidQuery)
	}
	if q.K == 0 {
		q.K = defaultK
	}
	if q.K < 1 || q.K > maxK {
		return fmt.Errorf("%w: k must be between 1 and %d", ErrInvalidQuery, maxK)
	}
	return nil
}

// TextSearchQuery is a free-text semantic search request.
type TextSearchQuery struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// Validate requires a query of at least two characters and a k in range.
func (q *TextSearchQuery) Validate(defaultK, maxK int) error {
	if len(q.Query) < 2 {
		return fmt.Errorf("%w: query must be at least 2 characters", ErrInvalidQuery)
	}
	if q.K == 0 {
		q.K = defaultK
	}
	if q.K < 1 || q.K > maxK {
		return fmt.Errorf("%w: k must be between 1 and %d", ErrInvalidQuery, maxK)
	}
	return nil
}

// DiscoverRequest asks for recommendations beyond the local index, seeded by
// an indexed video or by raw script text.
type DiscoverRequest struct {
	VideoID    string `json:"video_id,omitempty"`
	ScriptText string `json:"script_text,omitempty"`
	K          int    `json:"k,omitempty"`
}

// Validate requires a seed (video or script) and a k in range.
func (r *DiscoverRequest) Validate(defaultK, maxK int) error {
	if r.VideoID == "" && len(r.ScriptText) < 2 {
		return fmt.Errorf("%w: video_id or script_text is required", ErrInvalidQuery)
	}
	if r.K == 0 {
		r.K = defaultK
	}
	if r.K < 1 || r.K > maxK {
		return fmt.Errorf("%w: k must be between 1 and %d", ErrInvalidQuery, maxK)
	}
	return nil
}

// RecommendationResult is a single ranked recommendation.
type RecommendationResult struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	SimilarityScore float64 `json:"similarity_score"`
	ThumbnailURL    string  `json:"thumbnail_url,omitempty"`
	ChannelName     string  `json:"channel_name,omitempty"`
}

// RecommendationsResponse is the response for similarity and text search requests.
type RecommendationsResponse struct {
	QueryVideoID    string                  `json:"query_video_id,omitempty"`
	QueryText       string                  `json:"query_text,omitempty"`
	Recommendations []*RecommendationResult `json:"recommendations"`
	TotalIndexed    int                     `json:"total_indexed"`
}

// IndexVideoResponse reports the outcome of an index request.
type IndexVideoResponse struct {
	Added        bool   `json:"added"`
	VideoID      string `json:"video_id"`
	TotalIndexed int    `json:"total_indexed"`
}

// ReindexResult reports the outcome of a bulk reindex over the video store.
type ReindexResult struct {
	Indexed       int `json:"indexed"`
	Skipped       int `json:"skipped"`
	TotalInSource int `json:"total_in_source"`
	TotalInIndex  int `json:"total_in_index"`
}

// IndexStats reports size and dimension statistics for the index.
type IndexStats struct {
	TotalVideos        int     `json:"total_videos"`
	IndexSizeMB        float64 `json:"index_size_mb"`
	EmbeddingDimension int     `json:"embedding_dimension"`
}

// DiscoveredVideo is an external candidate ranked by similarity to the seed.
type DiscoveredVideo struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	ThumbnailURL    string  `json:"thumbnail_url,omitempty"`
	ChannelName     string  `json:"channel_name,omitempty"`
	PublishedAt     string  `json:"published_at,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
}

// DiscoverResponse is the response for a global discovery request.
type DiscoverResponse struct {
	Recommendations []*DiscoveredVideo `json:"recommendations"`
	SearchQuery     string             `json:"search_query"`
	TotalSearched   int                `json:"total_searched"`
}

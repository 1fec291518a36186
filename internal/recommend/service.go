package recommend

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/store"
	"github.com/hyperjump/susume/internal/vector"
	"github.com/hyperjump/susume/pkg/utils"
)

// Service is the recommendation orchestration layer: it assembles embedding
// text from video fields, talks to the embedder and the vector index, and
// shapes ranked results. One instance serves all requests.
type Service struct {
	index    *vector.VideoIndex
	embedder embedding.Embedder
	videos   store.VideoStore
	cfg      *config.RecommendConfig
	logger   *zap.Logger
}

// NewService creates a service with the given collaborators.
func NewService(
	index *vector.VideoIndex,
	embedder embedding.Embedder,
	videos store.VideoStore,
	cfg *config.RecommendConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		index:    index,
		embedder: embedder,
		videos:   videos,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *Service) bounds() TextBounds {
	return TextBounds{
		Summary:     s.cfg.SummaryChars,
		Transcript:  s.cfg.TranscriptChars,
		Description: s.cfg.DescriptionChars,
	}
}

// AssembleText builds the combined embedding text for a video's fields using
// the configured bounds.
func (s *Service) AssembleText(title, description, summary, transcript string) string {
	return BuildEmbeddingText(title, description, summary, transcript, s.bounds())
}

// EmbedVideoText builds the combined text for a video's fields and embeds it.
func (s *Service) EmbedVideoText(ctx context.Context, title, description, summary, transcript string) ([]float32, error) {
	return s.embedder.Embed(ctx, s.AssembleText(title, description, summary, transcript))
}

// IndexVideo adds one video to the index. When the request carries only a
// video_id, the text fields are resolved from the video store (store failures
// propagate: indexing is meaningless without the video's data). Already
// indexed videos report added=false without touching the index.
func (s *Service) IndexVideo(ctx context.Context, req *models.IndexVideoRequest) (*models.IndexVideoResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	title := req.Title
	description := req.Description
	summary := req.Summary
	transcript := req.Transcript
	thumbnailURL := req.ThumbnailURL
	channelName := req.ChannelName

	if title == "" {
		video, err := s.videos.Get(ctx, req.VideoID)
		if err != nil {
			return nil, fmt.Errorf("resolve video fields: %w", err)
		}
		title = video.Title
		description = video.Description
		summary = video.Summary
		transcript = video.Transcript
		thumbnailURL = video.ThumbnailURL
		channelName = video.ChannelName
	}

	emb, err := s.EmbedVideoText(ctx, title, description, summary, transcript)
	if err != nil {
		return nil, err
	}

	meta := models.VideoMetadata{
		Title:        title,
		Description:  utils.Truncate(description, s.cfg.MetadataChars),
		Summary:      utils.Truncate(summary, s.cfg.MetadataChars),
		ThumbnailURL: thumbnailURL,
		ChannelName:  channelName,
	}
	added, err := s.index.Add(req.VideoID, emb, meta)
	if err != nil {
		return nil, err
	}
	if added {
		s.logger.Info("video indexed", zap.String("video_id", req.VideoID), zap.Int("total", s.index.Count()))
	}
	return &models.IndexVideoResponse{
		Added:        added,
		VideoID:      req.VideoID,
		TotalIndexed: s.index.Count(),
	}, nil
}

// SimilarTo returns videos similar to an indexed video, never including the
// query video itself. Returns vector.ErrNotIndexed for unknown ids.
func (s *Service) SimilarTo(ctx context.Context, q *models.SimilarQuery) (*models.RecommendationsResponse, error) {
	if err := q.Validate(s.cfg.DefaultSimilarK, s.cfg.MaxSimilarK); err != nil {
		return nil, err
	}

	results, err := s.index.SearchByID(q.VideoID, q.K, map[string]bool{q.VideoID: true})
	if err != nil {
		return nil, err
	}

	return &models.RecommendationsResponse{
		QueryVideoID:    q.VideoID,
		Recommendations: shapeResults(results),
		TotalIndexed:    s.index.Count(),
	}, nil
}

// SearchText embeds the query text directly (no field assembly) and searches
// the index. An empty index is a valid state and yields an empty result.
func (s *Service) SearchText(ctx context.Context, q *models.TextSearchQuery) (*models.RecommendationsResponse, error) {
	if err := q.Validate(s.cfg.DefaultSearchK, s.cfg.MaxSearchK); err != nil {
		return nil, err
	}

	if s.index.Count() == 0 {
		return &models.RecommendationsResponse{
			QueryText:       q.Query,
			Recommendations: []*models.RecommendationResult{},
			TotalIndexed:    0,
		}, nil
	}

	emb, err := s.embedder.Embed(ctx, q.Query)
	if err != nil {
		return nil, err
	}
	results, err := s.index.Search(emb, q.K, nil)
	if err != nil {
		return nil, err
	}

	return &models.RecommendationsResponse{
		QueryText:       q.Query,
		Recommendations: shapeResults(results),
		TotalIndexed:    s.index.Count(),
	}, nil
}

// ReindexAll walks the video store and indexes everything not yet present.
// Already indexed videos are skipped, so the operation is idempotent and
// re-runnable after a partial failure.
func (s *Service) ReindexAll(ctx context.Context) (*models.ReindexResult, error) {
	const pageSize = 500

	result := &models.ReindexResult{}
	for offset := 0; ; offset += pageSize {
		videos, err := s.videos.List(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list videos: %w", err)
		}
		if len(videos) == 0 {
			break
		}
		result.TotalInSource += len(videos)

		for _, v := range videos {
			if s.index.Has(v.VideoID) {
				result.Skipped++
				continue
			}
			resp, err := s.IndexVideo(ctx, &models.IndexVideoRequest{
				VideoID:      v.VideoID,
				Title:        v.Title,
				Description:  v.Description,
				Summary:      v.Summary,
				Transcript:   v.Transcript,
				ThumbnailURL: v.ThumbnailURL,
				ChannelName:  v.ChannelName,
			})
			if err != nil {
				return nil, fmt.Errorf("index %s: %w", v.VideoID, err)
			}
			if resp.Added {
				result.Indexed++
			} else {
				result.Skipped++
			}
		}
		if len(videos) < pageSize {
			break
		}
	}

	result.TotalInIndex = s.index.Count()
	s.logger.Info("reindex complete",
		zap.Int("indexed", result.Indexed),
		zap.Int("skipped", result.Skipped),
		zap.Int("total_in_index", result.TotalInIndex),
	)
	return result, nil
}

// RemoveVideo deletes a video from the index. Returns false when it was not
// indexed.
func (s *Service) RemoveVideo(videoID string) (bool, error) {
	return s.index.Remove(videoID)
}

// Stats reports index size statistics. Storage is estimated, not measured:
// each row costs dimension*4 bytes of vector data plus a bounded metadata
// snapshot.
func (s *Service) Stats() *models.IndexStats {
	count := s.index.Count()
	dims := s.index.Dimensions()
	bytes := count * (dims*4 + s.cfg.MetadataChars)
	sizeMB := math.Round(float64(bytes)/(1024*1024)*100) / 100

	return &models.IndexStats{
		TotalVideos:        count,
		IndexSizeMB:        sizeMB,
		EmbeddingDimension: dims,
	}
}

func shapeResults(results []*vector.Result) []*models.RecommendationResult {
	shaped := make([]*models.RecommendationResult, 0, len(results))
	for _, r := range results {
		shaped = append(shaped, &models.RecommendationResult{
			VideoID:         r.VideoID,
			Title:           r.Metadata.Title,
			SimilarityScore: utils.RoundScore(r.Score),
			ThumbnailURL:    r.Metadata.ThumbnailURL,
			ChannelName:     r.Metadata.ChannelName,
		})
	}
	return shaped
}

package discover

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/videosearch"
	"github.com/hyperjump/susume/pkg/utils"
)

// Service runs global discovery: external search plus on-the-fly embedding,
// no persistence. Discovery is best-effort, so platform failures degrade to
// an empty recommendation list instead of erroring.
type Service struct {
	searcher videosearch.Searcher
	embedder embedding.Embedder
	cfg      *config.DiscoveryConfig
	logger   *zap.Logger
}

// NewService creates a discovery service.
func NewService(searcher videosearch.Searcher, embedder embedding.Embedder, cfg *config.DiscoveryConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{searcher: searcher, embedder: embedder, cfg: cfg, logger: logger}
}

// DiscoverSimilar derives a search query from sourceText, over-fetches
// candidates from the external platform, embeds source and candidates, and
// returns the top k by similarity. excludeID drops the originating video from
// the candidates when it shows up in its own search results.
func (s *Service) DiscoverSimilar(ctx context.Context, sourceText, excludeID string, k int) (*models.DiscoverResponse, error) {
	query := QueryTerms(sourceText, s.cfg.QueryTerms)
	empty := &models.DiscoverResponse{
		Recommendations: []*models.DiscoveredVideo{},
		SearchQuery:     query,
		TotalSearched:   0,
	}
	if query == "" {
		return empty, nil
	}

	candidates, err := s.searcher.Search(ctx, query, s.cfg.Overfetch)
	if err != nil {
		s.logger.Warn("video search failed, returning no suggestions",
			zap.String("query", query), zap.Error(err))
		return empty, nil
	}
	if len(candidates) == 0 {
		return empty, nil
	}

	sourceEmb, err := s.embedder.Embed(ctx, sourceText)
	if err != nil {
		return nil, err
	}

	// Candidates are embedded one at a time; discovery latency scales with
	// the over-fetch size.
	ranked := make([]*models.DiscoveredVideo, 0, len(candidates))
	for _, c := range candidates {
		if c.VideoID == excludeID {
			continue
		}
		candEmb, err := s.embedder.Embed(ctx, c.Title+" "+utils.CollapseWhitespace(c.Description))
		if err != nil {
			return nil, err
		}
		score := 0.0
		for i := range sourceEmb {
			score += float64(sourceEmb[i] * candEmb[i])
		}
		ranked = append(ranked, &models.DiscoveredVideo{
			VideoID:         c.VideoID,
			Title:           c.Title,
			Description:     utils.Truncate(c.Description, 300),
			ThumbnailURL:    c.ThumbnailURL,
			ChannelName:     c.ChannelName,
			PublishedAt:     c.PublishedAt,
			SimilarityScore: score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})
	if k > len(ranked) {
		k = len(ranked)
	}
	top := ranked[:k]
	for _, r := range top {
		r.SimilarityScore = utils.RoundScore(r.SimilarityScore)
	}

	return &models.DiscoverResponse{
		Recommendations: top,
		SearchQuery:     query,
		TotalSearched:   len(candidates),
	}, nil
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/vector"
)

func (s *Server) handleIndexVideo(w http.ResponseWriter, r *http.Request) {
	var req models.IndexVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("index video request", zap.String("video_id", req.VideoID))
	resp, err := s.recommender.IndexVideo(r.Context(), &req)
	if err != nil {
		s.respondRecommendError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Added {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, resp)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	q := &models.SimilarQuery{
		VideoID: chi.URLParam(r, "video_id"),
		K:       queryInt(r, "k"),
	}
	resp, err := s.recommender.SimilarTo(r.Context(), q)
	if err != nil {
		s.respondRecommendError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	q := &models.TextSearchQuery{
		Query: r.URL.Query().Get("q"),
		K:     queryInt(r, "k"),
	}
	resp, err := s.recommender.SearchText(r.Context(), q)
	if err != nil {
		s.respondRecommendError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleDiscover seeds global discovery from an indexed video's stored fields
// or from raw script text in the request body.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if s.discovery == nil {
		s.respondError(w, http.StatusNotImplemented, "discovery not enabled")
		return
	}
	var req models.DiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(s.config.Discovery.DefaultK, s.config.Discovery.MaxK); err != nil {
		s.respondRecommendError(w, err)
		return
	}

	sourceText := req.ScriptText
	excludeID := ""
	if req.VideoID != "" {
		video, err := s.videos.Get(r.Context(), req.VideoID)
		if err != nil {
			s.respondError(w, http.StatusNotFound, "video not found")
			return
		}
		sourceText = s.recommender.AssembleText(video.Title, video.Description, video.Summary, video.Transcript)
		excludeID = req.VideoID
	}

	s.logger.Debug("discover request", zap.String("video_id", req.VideoID), zap.Int("k", req.K))
	resp, err := s.discovery.DiscoverSimilar(r.Context(), sourceText, excludeID, req.K)
	if err != nil {
		s.respondRecommendError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	result, err := s.recommender.ReindexAll(r.Context())
	if err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondRecommendError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.recommender.Stats())
}

func (s *Server) handleRemoveVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	s.logger.Debug("remove video request", zap.String("video_id", videoID))
	removed, err := s.recommender.RemoveVideo(videoID)
	if err != nil {
		s.respondRecommendError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"video_id": videoID, "removed": removed})
}

func (s *Server) handleUpsertVideo(w http.ResponseWriter, r *http.Request) {
	var input models.VideoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	video, err := s.videos.Upsert(r.Context(), &input)
	if err != nil {
		s.logger.Error("upsert video failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.keywords != nil {
		if err := s.keywords.Index(r.Context(), video); err != nil {
			s.logger.Warn("keyword indexing failed", zap.String("video_id", video.VideoID), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusCreated, video)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	video, err := s.videos.Get(r.Context(), videoID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "video not found")
		return
	}
	s.respondJSON(w, http.StatusOK, video)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	s.logger.Debug("delete video request", zap.String("video_id", videoID))
	if err := s.videos.Delete(r.Context(), videoID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// The video leaves every surface at once: store, keyword index, vector index.
	if s.keywords != nil {
		if err := s.keywords.Delete(r.Context(), videoID); err != nil {
			s.logger.Warn("keyword removal failed", zap.String("video_id", videoID), zap.Error(err))
		}
	}
	if _, err := s.recommender.RemoveVideo(videoID); err != nil {
		s.respondRecommendError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"video_id": videoID, "status": "deleted"})
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	if s.keywords == nil {
		s.respondError(w, http.StatusNotImplemented, "keyword search not enabled")
		return
	}
	query := r.URL.Query().Get("q")
	if len(query) < 2 {
		s.respondError(w, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}
	limit := queryInt(r, "limit")
	if limit < 1 || limit > 50 {
		limit = 10
	}
	results, err := s.keywords.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"query": query, "results": results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	videoCount, err := s.videos.Count(r.Context())
	if err != nil {
		s.logger.Error("status: count videos failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats := s.recommender.Stats()
	resp := map[string]interface{}{
		"videos":        videoCount,
		"indexed":       stats.TotalVideos,
		"index_size_mb": stats.IndexSizeMB,
		"config": map[string]interface{}{
			"embedding_dimensions": stats.EmbeddingDimension,
			"database_path":        s.config.Storage.DatabasePath,
			"index_path":           s.config.Storage.IndexPath,
			"bleve_index_path":     s.config.Storage.BleveIndexPath,
		},
	}
	if s.keywords != nil {
		if kwCount, err := s.keywords.Count(); err == nil {
			resp["keyword_indexed"] = kwCount
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondRecommendError maps the recommendation error taxonomy onto HTTP
// status codes. Unknown errors are treated as internal.
func (s *Server) respondRecommendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, vector.ErrNotIndexed):
		s.respondError(w, http.StatusNotFound, "video not indexed, index it first via /api/v1/recommendations/index")
	case errors.Is(err, embedding.ErrUnavailable):
		s.logger.Error("embedder unavailable", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "embedding model unavailable")
	case errors.Is(err, vector.ErrPersistence):
		s.logger.Error("index persistence failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to persist index")
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

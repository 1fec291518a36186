// Package store provides persistence: the SQLite video store and the Bolt
// archive backing the vector index.
package store

import (
	"context"

	"github.com/hyperjump/susume/internal/models"
)

// VideoStore defines video entity persistence. The recommendation core only
// reads from it; writes come from the ingestion side of the API.
type VideoStore interface {
	Upsert(ctx context.Context, input *models.VideoInput) (*models.Video, error)
	Get(ctx context.Context, videoID string) (*models.Video, error)
	List(ctx context.Context, offset, limit int) ([]*models.Video, error)
	Delete(ctx context.Context, videoID string) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

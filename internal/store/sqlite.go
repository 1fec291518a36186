package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/susume/internal/models"
)

// SQLiteVideoStore implements VideoStore using SQLite.
type SQLiteVideoStore struct {
	db *sql.DB
}

// NewSQLiteVideoStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteVideoStore(dbPath string) (*SQLiteVideoStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteVideoStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		video_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		summary TEXT DEFAULT '',
		transcript TEXT DEFAULT '',
		thumbnail_url TEXT DEFAULT '',
		channel_name TEXT DEFAULT '',
		published_at TEXT DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Upsert inserts or updates a video. When input.VideoID is empty (a video
// assembled from a raw script rather than fetched from an external platform)
// a fresh UUID is assigned.
func (s *SQLiteVideoStore) Upsert(ctx context.Context, input *models.VideoInput) (*models.Video, error) {
	id := input.VideoID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (video_id, title, description, summary, transcript,
		                     thumbnail_url, channel_name, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   summary = excluded.summary,
		   transcript = excluded.transcript,
		   thumbnail_url = excluded.thumbnail_url,
		   channel_name = excluded.channel_name,
		   published_at = excluded.published_at,
		   updated_at = excluded.updated_at`,
		id, input.Title, input.Description, input.Summary, input.Transcript,
		input.ThumbnailURL, input.ChannelName, input.PublishedAt, now, now,
	)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get returns a video by ID.
func (s *SQLiteVideoStore) Get(ctx context.Context, videoID string) (*models.Video, error) {
	var v models.Video
	err := s.db.QueryRowContext(ctx,
		`SELECT video_id, title, description, summary, transcript,
		        thumbnail_url, channel_name, published_at, created_at, updated_at
		 FROM videos WHERE video_id = ?`, videoID,
	).Scan(&v.VideoID, &v.Title, &v.Description, &v.Summary, &v.Transcript,
		&v.ThumbnailURL, &v.ChannelName, &v.PublishedAt, &v.CreatedAt, &v.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video not found: %s", videoID)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns videos ordered by creation time, newest first.
func (s *SQLiteVideoStore) List(ctx context.Context, offset, limit int) ([]*models.Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id, title, description, summary, transcript,
		        thumbnail_url, channel_name, published_at, created_at, updated_at
		 FROM videos ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.VideoID, &v.Title, &v.Description, &v.Summary, &v.Transcript,
			&v.ThumbnailURL, &v.ChannelName, &v.PublishedAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		videos = append(videos, &v)
	}
	return videos, rows.Err()
}

// Delete removes a video by ID.
func (s *SQLiteVideoStore) Delete(ctx context.Context, videoID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE video_id = ?`, videoID)
	return err
}

// Count returns the total number of stored videos.
func (s *SQLiteVideoStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteVideoStore) Close() error {
	return s.db.Close()
}

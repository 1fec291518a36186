// Package models defines core data structures for videos, queries, and recommendations.
package models

import "time"

// Video represents a stored video with the text fields used for embedding.
type Video struct {
	VideoID      string    `json:"video_id" db:"video_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description,omitempty" db:"description"`
	Summary      string    `json:"summary,omitempty" db:"summary"`
	Transcript   string    `json:"transcript,omitempty" db:"transcript"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	ChannelName  string    `json:"channel_name,omitempty" db:"channel_name"`
	PublishedAt  string    `json:"published_at,omitempty" db:"published_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// VideoInput is the input for creating or updating a video. When VideoID is
// empty (e.g. a video generated from a raw script) an ID is assigned on upsert.
type VideoInput struct {
	VideoID      string `json:"video_id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Transcript   string `json:"transcript,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ChannelName  string `json:"channel_name,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
}

// VideoMetadata is the bounded display snapshot stored in the index side-car.
// It is used only for shaping results and is never part of similarity scoring.
type VideoMetadata struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Summary      string `json:"summary,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ChannelName  string `json:"channel_name,omitempty"`
}

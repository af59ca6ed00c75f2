// Package catalog describes the external music catalog the recommender pulls
// tracks and audio features from.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Per-call caps imposed by the catalog.
const (
	MaxSearchLimit       = 50
	MaxTrackBatch        = 50
	MaxAudioFeatureBatch = 100
	// MaxSearchOffset is the highest offset the search endpoint will serve.
	MaxSearchOffset = 1000
)

var (
	// ErrExternalCall matches every failure talking to the catalog.
	ErrExternalCall = errors.New("catalog call failed")

	// ErrBatchTooLarge is returned when a caller exceeds a per-call cap.
	ErrBatchTooLarge = errors.New("batch exceeds catalog limit")
)

// SearchType selects what a search returns.
type SearchType string

const (
	SearchTrack SearchType = "track"
	SearchAlbum SearchType = "album"
)

type SearchRequest struct {
	Query  string
	Type   SearchType
	Market string
	Limit  int
	Offset int
}

// SearchResult holds whichever item list matches the request type.
type SearchResult struct {
	Tracks []TrackSummary
	Albums []Album
}

type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TrackSummary is the projection returned by search and album listings.
type TrackSummary struct {
	ID     string
	Name   string
	Artist string
	Album  string
}

// Track is a full metadata record.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	Album   Album    `json:"album"`
}

// PrimaryArtist returns the first credited artist, or "" if there is none.
func (t *Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// Summary projects the track the same way search results are projected.
func (t *Track) Summary() TrackSummary {
	return TrackSummary{
		ID:     t.ID,
		Name:   t.Name,
		Artist: t.PrimaryArtist(),
		Album:  t.Album.Name,
	}
}

// AudioFeatures is the per-track analysis record.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	DurationMs       float64 `json:"duration_ms"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Key              float64 `json:"key"`
	Liveness         float64 `json:"liveness"`
	Loudness         float64 `json:"loudness"`
	Mode             float64 `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    float64 `json:"time_signature"`
	Valence          float64 `json:"valence"`
}

// Client is the capability the ingestion pipeline and search depend on.
//
// Tracks and AudioFeatures return slices index-aligned with ids; an entry is
// nil when the catalog has no record for that id.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (SearchResult, error)
	Tracks(ctx context.Context, ids []string) ([]*Track, error)
	AudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error)
	AlbumTracks(ctx context.Context, albumID string, limit int) ([]TrackSummary, error)
}

// CheckBatch rejects batches larger than max.
func CheckBatch(kind string, n, max int) error {
	if n > max {
		return fmt.Errorf("%s: %d ids, max %d: %w", kind, n, max, ErrBatchTooLarge)
	}
	return nil
}

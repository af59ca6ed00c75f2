package track

import (
	"errors"
	"fmt"

	"github.com/ademuri/track-recommender/internal/catalog"
)

// ErrMissingFeatureData is returned when the catalog had no metadata or no
// audio features for an id. Callers skip the id and carry on.
var ErrMissingFeatureData = errors.New("missing feature data")

// Extract builds a track record from its metadata and audio features.
func Extract(meta *catalog.Track, features *catalog.AudioFeatures) (Track, error) {
	switch {
	case meta == nil && features == nil:
		return Track{}, fmt.Errorf("no metadata or audio features: %w", ErrMissingFeatureData)
	case meta == nil:
		return Track{}, fmt.Errorf("no metadata for %s: %w", features.ID, ErrMissingFeatureData)
	case features == nil:
		return Track{}, fmt.Errorf("no audio features for %s (%s): %w", meta.ID, meta.Name, ErrMissingFeatureData)
	}

	return Track{
		ID:     meta.ID,
		Name:   meta.Name,
		Artist: meta.PrimaryArtist(),
		Album:  meta.Album.Name,
		Vector: VectorOf(features),
	}, nil
}

// VectorOf lays out audio features in canonical dimension order.
func VectorOf(f *catalog.AudioFeatures) Vector {
	return Vector{
		Acousticness:     f.Acousticness,
		Danceability:     f.Danceability,
		Duration:         f.DurationMs,
		Energy:           f.Energy,
		Instrumentalness: f.Instrumentalness,
		Key:              f.Key,
		Liveness:         f.Liveness,
		Loudness:         f.Loudness,
		Mode:             f.Mode,
		Speechiness:      f.Speechiness,
		Tempo:            f.Tempo,
		TimeSignature:    f.TimeSignature,
		Valence:          f.Valence,
	}
}

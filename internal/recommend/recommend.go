// Package recommend ranks candidate tracks against the user's preferences.
//
// Two recommenders share the same input: the Preference Set and the Candidate
// Pool as read from the store. Similarity is a nearest-neighbour ranking over
// scaled feature vectors; Sequence scores each candidate with a classifier
// over a window of recent preferences.
package recommend

import (
	"errors"

	"github.com/ademuri/track-recommender/internal/track"
)

// DefaultResults is used when a non-positive result count is requested.
const DefaultResults = 10

var (
	ErrEmptyCandidatePool      = errors.New("candidate pool is empty")
	ErrInsufficientPreferences = errors.New("not enough preference tracks")
)

// Recommendation is one ranked candidate.
type Recommendation struct {
	ID     string
	Name   string
	Artist string
	// Distance is set by Similarity; lower is closer.
	Distance float64
	// Score is set by Sequence: the classifier's output for the candidate.
	Score float64
}

// Recommender picks up to n candidates for the given preferences.
type Recommender interface {
	Recommend(prefs, candidates []track.Track, n int) ([]Recommendation, error)
}

// scale holds the per-dimension divisor computed from the candidate pool.
type scale track.Vector

// scaleOf returns each dimension's maximum over candidates. A zero maximum
// becomes 1 so the dimension passes through unchanged.
func scaleOf(candidates []track.Track) scale {
	var s scale
	for d := range s {
		s[d] = candidates[0].Vector[d]
		for _, c := range candidates[1:] {
			s[d] = max(s[d], c.Vector[d])
		}
		if s[d] == 0 {
			s[d] = 1
		}
	}
	return s
}

func (s scale) apply(v track.Vector) track.Vector {
	var out track.Vector
	for d := range v {
		out[d] = v[d] / s[d]
	}
	return out
}

func (s scale) applyAll(tracks []track.Track) []track.Vector {
	out := make([]track.Vector, len(tracks))
	for i, t := range tracks {
		out[i] = s.apply(t.Vector)
	}
	return out
}

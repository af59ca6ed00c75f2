package recommend

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ademuri/track-recommender/internal/track"
)

// WindowSize is the number of recent preferences a Classifier sees.
const WindowSize = 10

// Classifier decides whether candidate follows on from window, the
// WindowSize most recent preferences oldest first. All vectors are scaled
// by the candidate pool maximum.
type Classifier interface {
	Classify(window []track.Vector, candidate track.Vector) (score float64, accept bool)
}

// Sequence recommends the candidates a Classifier accepts, in random order.
// It is not safe for concurrent use.
type Sequence struct {
	classifier Classifier
	rng        *rand.Rand
}

var _ Recommender = (*Sequence)(nil)

func NewSequence(c Classifier, seed uint64) *Sequence {
	return &Sequence{
		classifier: c,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *Sequence) Recommend(prefs, candidates []track.Track, n int) ([]Recommendation, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidatePool
	}
	if len(prefs) < WindowSize {
		return nil, fmt.Errorf("sequence needs %d preferences, have %d: %w", WindowSize, len(prefs), ErrInsufficientPreferences)
	}
	if n <= 0 {
		n = DefaultResults
	}

	sc := scaleOf(candidates)
	window := sc.applyAll(recent(prefs, WindowSize))

	var accepted []Recommendation
	for _, c := range candidates {
		score, ok := s.classifier.Classify(window, sc.apply(c.Vector))
		if !ok {
			continue
		}
		accepted = append(accepted, Recommendation{ID: c.ID, Name: c.Name, Artist: c.Artist, Score: score})
	}

	s.rng.Shuffle(len(accepted), func(i, j int) {
		accepted[i], accepted[j] = accepted[j], accepted[i]
	})
	return accepted[:min(n, len(accepted))], nil
}

// recent returns the n most recently added tracks, oldest first.
func recent(prefs []track.Track, n int) []track.Track {
	sorted := slices.Clone(prefs)
	slices.SortStableFunc(sorted, func(a, b track.Track) int {
		return a.AddedAt.Compare(b.AddedAt)
	})
	return sorted[len(sorted)-n:]
}

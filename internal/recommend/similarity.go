package recommend

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/ademuri/track-recommender/internal/track"
)

type Config struct {
	// Dedup keeps only the closest occurrence of a candidate reached from
	// several preferences. Results may then be shorter than requested.
	Dedup bool
}

// Similarity ranks candidates by Euclidean distance to each preference after
// scaling every dimension by its maximum over the candidate pool.
type Similarity struct {
	cfg Config
}

var _ Recommender = (*Similarity)(nil)

func NewSimilarity(cfg Config) *Similarity {
	return &Similarity{cfg: cfg}
}

type neighbor struct {
	candidate int
	distance  float64
}

func (s *Similarity) Recommend(prefs, candidates []track.Track, n int) ([]Recommendation, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidatePool
	}
	if len(prefs) == 0 {
		return nil, fmt.Errorf("similarity needs at least one preference: %w", ErrInsufficientPreferences)
	}
	if n <= 0 {
		n = DefaultResults
	}

	sc := scaleOf(candidates)
	pool := sc.applyAll(candidates)
	k := min(neighborCount(n, len(prefs)), len(pool))

	hits := make([]neighbor, 0, k*len(prefs))
	for _, p := range prefs {
		hits = append(hits, nearest(sc.apply(p.Vector), pool, k)...)
	}
	slices.SortStableFunc(hits, func(a, b neighbor) int {
		return cmp.Compare(a.distance, b.distance)
	})
	if s.cfg.Dedup {
		hits = firstOccurrences(hits)
	}
	hits = hits[:min(n, len(hits))]

	out := make([]Recommendation, len(hits))
	for i, h := range hits {
		c := candidates[h.candidate]
		out[i] = Recommendation{ID: c.ID, Name: c.Name, Artist: c.Artist, Distance: h.distance}
	}
	return out, nil
}

// neighborCount is ceil(n / prefs).
func neighborCount(n, prefs int) int {
	return (n + prefs - 1) / prefs
}

// nearest returns the k candidates closest to v, closest first. Equal
// distances keep pool order.
func nearest(v track.Vector, pool []track.Vector, k int) []neighbor {
	all := make([]neighbor, len(pool))
	for i, c := range pool {
		all[i] = neighbor{candidate: i, distance: math.Sqrt(squaredL2(v, c))}
	}
	slices.SortStableFunc(all, func(a, b neighbor) int {
		return cmp.Compare(a.distance, b.distance)
	})
	return all[:k]
}

func squaredL2(a, b track.Vector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func firstOccurrences(hits []neighbor) []neighbor {
	seen := make(map[int]struct{}, len(hits))
	out := hits[:0]
	for _, h := range hits {
		if _, ok := seen[h.candidate]; ok {
			continue
		}
		seen[h.candidate] = struct{}{}
		out = append(out, h)
	}
	return out
}

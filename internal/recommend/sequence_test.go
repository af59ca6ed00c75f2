package recommend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ademuri/track-recommender/internal/store"
	"github.com/ademuri/track-recommender/internal/track"
)

// thresholdClassifier accepts candidates whose scaled acousticness is at
// least min, and remembers the last window it saw.
type thresholdClassifier struct {
	min    float64
	window []track.Vector
}

func (c *thresholdClassifier) Classify(window []track.Vector, candidate track.Vector) (float64, bool) {
	c.window = window
	return candidate[track.Acousticness], candidate[track.Acousticness] >= c.min
}

func prefsOf(n int) []track.Track {
	vs := make([]track.Vector, n)
	for i := range vs {
		vs[i] = vec(float64(i), -5)
	}
	return tracksOf("p", vs...)
}

func TestSequenceNeedsTenPreferences(t *testing.T) {
	candidates := tracksOf("c", vec(1, -5))
	_, err := NewSequence(&thresholdClassifier{}, 1).Recommend(prefsOf(9), candidates, 5)
	assert.ErrorIs(t, err, ErrInsufficientPreferences)

	_, err = NewSequence(&thresholdClassifier{}, 1).Recommend(prefsOf(10), nil, 5)
	assert.ErrorIs(t, err, ErrEmptyCandidatePool)
}

func TestSequenceAcceptsShufflesAndTruncates(t *testing.T) {
	var vs []track.Vector
	for i := 1; i <= 10; i++ {
		vs = append(vs, vec(float64(i), -5))
	}
	candidates := tracksOf("c", vs...)
	clf := &thresholdClassifier{min: 0.5}

	recs, err := NewSequence(clf, 7).Recommend(prefsOf(12), candidates, 0)
	require.NoError(t, err)
	// c4..c9 scale to 0.5..1.0.
	assert.ElementsMatch(t, []string{"c4", "c5", "c6", "c7", "c8", "c9"}, ids(recs))

	again, err := NewSequence(clf, 7).Recommend(prefsOf(12), candidates, 0)
	require.NoError(t, err)
	assert.Equal(t, ids(recs), ids(again), "same seed gives the same order")

	short, err := NewSequence(clf, 7).Recommend(prefsOf(12), candidates, 3)
	require.NoError(t, err)
	assert.Len(t, short, 3)
}

func TestSequenceWindowIsMostRecent(t *testing.T) {
	prefs := prefsOf(12)
	// Reverse the slice so the window must come from AddedAt, not position.
	for i, j := 0, len(prefs)-1; i < j; i, j = i+1, j-1 {
		prefs[i], prefs[j] = prefs[j], prefs[i]
	}
	candidates := tracksOf("c", vec(11, -5))
	clf := &thresholdClassifier{}

	_, err := NewSequence(clf, 1).Recommend(prefs, candidates, 5)
	require.NoError(t, err)
	require.Len(t, clf.window, WindowSize)
	// p2..p11, oldest first, scaled by the candidate max of 11.
	assert.InDelta(t, 2.0/11, clf.window[0][track.Acousticness], 1e-12)
	assert.InDelta(t, 1.0, clf.window[9][track.Acousticness], 1e-12)
}

func TestLoadLogistic(t *testing.T) {
	zeros := strings.TrimSuffix(strings.Repeat("0,", LogisticInputs), ",")

	c, err := LoadLogistic(strings.NewReader(fmt.Sprintf(`{"weights":[%s],"bias":1}`, zeros)))
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.Threshold)
	score, ok := c.Classify(make([]track.Vector, WindowSize), track.Vector{})
	assert.True(t, ok)
	assert.InDelta(t, 0.7310585786, score, 1e-9)

	c, err = LoadLogistic(strings.NewReader(fmt.Sprintf(`{"weights":[%s],"bias":1,"threshold":0.9}`, zeros)))
	require.NoError(t, err)
	_, ok = c.Classify(make([]track.Vector, WindowSize), track.Vector{})
	assert.False(t, ok)

	_, err = LoadLogistic(strings.NewReader(`{"weights":[1,2,3]}`))
	assert.Error(t, err)
	_, err = LoadLogistic(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestLogisticUsesCandidateWeights(t *testing.T) {
	weights := make([]float64, LogisticInputs)
	// Only the candidate's acousticness counts.
	weights[WindowSize*track.Dimensions+track.Acousticness] = 10
	c := &LogisticClassifier{Weights: weights, Bias: -5, Threshold: 0.5}

	window := make([]track.Vector, WindowSize)
	_, ok := c.Classify(window, vec(0.9, 0))
	assert.True(t, ok)
	_, ok = c.Classify(window, vec(0.1, 0))
	assert.False(t, ok)
}

func TestServiceRecommend(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(filepath.Join(t.TempDir(), "tracks.db"))
	require.NoError(t, err)
	defer s.Close()

	candidates := tracksOf("c", vec(10, -5), vec(1, -10), vec(7, -5), vec(8, -5), vec(3, -5))
	prefs := tracksOf("p", vec(6, -5))
	prefs[0].Preference = true
	require.NoError(t, s.InsertMany(ctx, append(candidates, prefs...)))

	svc := NewService(s, nil)
	recs, err := svc.Recommend(ctx, NewSimilarity(Config{}), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2", "c3", "c4"}, ids(recs))

	_, err = svc.Recommend(ctx, NewSequence(&thresholdClassifier{}, 1), 3)
	assert.ErrorIs(t, err, ErrInsufficientPreferences)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("sequence")
	require.NoError(t, err)
	assert.Equal(t, MethodSequence, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodSimilarity, m)

	_, err = ParseMethod("random")
	assert.Error(t, err)
}

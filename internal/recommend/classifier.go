package recommend

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/goccy/go-json"

	"github.com/ademuri/track-recommender/internal/track"
)

// LogisticInputs is the length of a LogisticClassifier's weight vector: the
// flattened window followed by the candidate.
const LogisticInputs = (WindowSize + 1) * track.Dimensions

// LogisticClassifier accepts a candidate when
// sigmoid(weights·[window..., candidate] + bias) >= threshold.
type LogisticClassifier struct {
	Weights   []float64
	Bias      float64
	Threshold float64
}

var _ Classifier = (*LogisticClassifier)(nil)

type logisticFile struct {
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Threshold *float64  `json:"threshold"`
}

// LoadLogistic reads a model of the form
// {"weights": [...], "bias": b, "threshold": t}. Threshold defaults to 0.5.
func LoadLogistic(r io.Reader) (*LogisticClassifier, error) {
	var f logisticFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	if len(f.Weights) != LogisticInputs {
		return nil, fmt.Errorf("model has %d weights, want %d", len(f.Weights), LogisticInputs)
	}
	c := &LogisticClassifier{Weights: f.Weights, Bias: f.Bias, Threshold: 0.5}
	if f.Threshold != nil {
		c.Threshold = *f.Threshold
	}
	return c, nil
}

func LoadLogisticFile(path string) (*LogisticClassifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := LoadLogistic(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *LogisticClassifier) Classify(window []track.Vector, candidate track.Vector) (float64, bool) {
	z := c.Bias
	i := 0
	for _, v := range append(window[:len(window):len(window)], candidate) {
		for _, x := range v {
			if i >= len(c.Weights) {
				break
			}
			z += c.Weights[i] * x
			i++
		}
	}
	score := 1 / (1 + math.Exp(-z))
	return score, score >= c.Threshold
}

package recommend

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ademuri/track-recommender/internal/logging"
	"github.com/ademuri/track-recommender/internal/store"
)

type Method string

const (
	MethodSimilarity Method = "similarity"
	MethodSequence   Method = "sequence"
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodSimilarity, MethodSequence:
		return m, nil
	case "":
		return MethodSimilarity, nil
	default:
		return "", fmt.Errorf("unknown recommendation method %q (want %s or %s)", s, MethodSimilarity, MethodSequence)
	}
}

// Service reads both partitions from a store and hands them to a
// Recommender.
type Service struct {
	store  store.Backend
	logger *log.Logger
}

func NewService(s store.Backend, logger *log.Logger) *Service {
	return &Service{
		store:  s,
		logger: logging.OrDiscard(logger).With("component", "recommend"),
	}
}

func (s *Service) Recommend(ctx context.Context, r Recommender, n int) ([]Recommendation, error) {
	prefs, err := s.store.Find(ctx, store.Preferences())
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	candidates, err := s.store.Find(ctx, store.Candidates())
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	recs, err := r.Recommend(prefs, candidates, n)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recommended tracks", "preferences", len(prefs), "candidates", len(candidates), "results", len(recs))
	return recs, nil
}

// Package search runs keyword track lookups against the catalog.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ademuri/track-recommender/internal/catalog"
	"github.com/ademuri/track-recommender/internal/logging"
)

const (
	DefaultResults = 100
	MaxResults     = 1000
)

var ErrNoSearchParameters = errors.New("no search parameters: need an artist or a track name")

type Searcher struct {
	catalog catalog.Client
	market  string
	logger  *log.Logger
}

// New returns a Searcher. An empty market leaves results unscoped.
func New(c catalog.Client, market string, logger *log.Logger) *Searcher {
	return &Searcher{
		catalog: c,
		market:  market,
		logger:  logging.OrDiscard(logger).With("component", "search"),
	}
}

// Query builds the catalog query for artist and name, artist first.
func Query(artist, name string) (string, error) {
	artist = strings.TrimSpace(artist)
	name = strings.TrimSpace(name)
	switch {
	case artist != "" && name != "":
		return fmt.Sprintf("artist:%s track:%s", artist, name), nil
	case artist != "":
		return "artist:" + artist, nil
	case name != "":
		return "track:" + name, nil
	default:
		return "", ErrNoSearchParameters
	}
}

// Search returns up to n tracks matching artist and name in catalog order.
// n <= 0 means DefaultResults; n is capped at MaxResults.
func (s *Searcher) Search(ctx context.Context, artist, name string, n int) ([]catalog.TrackSummary, error) {
	query, err := Query(artist, name)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultResults
	}
	n = min(n, MaxResults)

	var results []catalog.TrackSummary
	for offset := 0; offset < catalog.MaxSearchOffset; offset += catalog.MaxSearchLimit {
		res, err := s.catalog.Search(ctx, catalog.SearchRequest{
			Query:  query,
			Type:   catalog.SearchTrack,
			Market: s.market,
			Limit:  catalog.MaxSearchLimit,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("searching %q at offset %d: %w", query, offset, err)
		}

		page := res.Tracks
		if room := n - len(results); len(page) > room {
			page = page[:room]
		}
		results = append(results, page...)
		s.logger.Debug("fetched search page", "query", query, "offset", offset, "results", len(results))

		if len(results) >= n || len(res.Tracks) < catalog.MaxSearchLimit {
			break
		}
	}
	return results, nil
}

// Package ingest keeps the candidate pool stocked with new tracks from the
// catalog.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ademuri/track-recommender/internal/catalog"
	"github.com/ademuri/track-recommender/internal/logging"
	"github.com/ademuri/track-recommender/internal/store"
	"github.com/ademuri/track-recommender/internal/track"
)

// MaxNumTracks caps the number of new tracks one Populate call may add.
const MaxNumTracks = 1000

type Config struct {
	// Query selects the albums new tracks are drawn from.
	Query             string
	Market            string
	PageSize          int
	MaxTracksPerAlbum int
	// MaxPages bounds discovery when the catalog keeps returning albums
	// whose tracks are all known.
	MaxPages int
}

func (c *Config) setDefaults() {
	if c.Query == "" {
		c.Query = "tag:hipster tag:new"
	}
	if c.Market == "" {
		c.Market = "US"
	}
	if c.PageSize <= 0 || c.PageSize > catalog.MaxSearchLimit {
		c.PageSize = catalog.MaxSearchLimit
	}
	if c.MaxTracksPerAlbum <= 0 {
		c.MaxTracksPerAlbum = 3
	}
	if c.MaxPages <= 0 {
		c.MaxPages = catalog.MaxSearchOffset / c.PageSize
	}
}

// Pipeline discovers, enriches and stores tracks. Runs on one Pipeline are
// serialized.
type Pipeline struct {
	mu      sync.Mutex
	catalog catalog.Client
	store   store.Backend
	cfg     Config
	logger  *log.Logger
	now     func() time.Time
}

func New(c catalog.Client, s store.Backend, cfg Config, logger *log.Logger) *Pipeline {
	cfg.setDefaults()
	return &Pipeline{
		catalog: c,
		store:   s,
		cfg:     cfg,
		logger:  logging.OrDiscard(logger).With("component", "ingest"),
		now:     time.Now,
	}
}

// Report describes the outcome of a Populate run.
type Report struct {
	RunID     string
	Requested int
	Selected  int
	Stored    int
	Skipped   []string
	Pages     int
	// Partial is set when the catalog ran out before Requested new ids were
	// found.
	Partial bool
}

// AddResult describes the outcome of AddTracks.
type AddResult struct {
	Stored  int
	Skipped []string
}

// Populate adds up to numTracks tracks that are not already stored to the
// candidate pool. numTracks outside 1..MaxNumTracks means MaxNumTracks.
func (p *Pipeline) Populate(ctx context.Context, numTracks int) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if numTracks <= 0 || numTracks > MaxNumTracks {
		numTracks = MaxNumTracks
	}
	started := p.now().UTC()

	ids, pages, err := p.discover(ctx, numTracks)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:     uuid.NewString(),
		Requested: numTracks,
		Selected:  len(ids),
		Pages:     pages,
		Partial:   len(ids) < numTracks,
	}
	if report.Partial {
		p.logger.Warn("catalog could not satisfy request", "requested", numTracks, "selected", len(ids), "pages", pages)
	}

	added, err := p.addTracks(ctx, ids, false)
	if err != nil {
		return Report{}, err
	}
	report.Stored = added.Stored
	report.Skipped = added.Skipped

	run := store.Run{
		ID:        report.RunID,
		Started:   started,
		Finished:  p.now().UTC(),
		Requested: report.Requested,
		Selected:  report.Selected,
		Stored:    report.Stored,
		Skipped:   len(report.Skipped),
		Pages:     report.Pages,
		Partial:   report.Partial,
	}
	if err := p.store.SaveRun(ctx, run); err != nil {
		return Report{}, fmt.Errorf("saving run: %w", err)
	}

	p.logger.Info("populate finished", "run", report.RunID, "stored", report.Stored, "skipped", len(report.Skipped))
	return report, nil
}

// discover pages through the album search collecting ids that are neither
// stored nor already selected in this run.
func (p *Pipeline) discover(ctx context.Context, numTracks int) ([]string, int, error) {
	stored, err := p.store.IDs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("loading stored ids: %w", err)
	}
	seen := make(map[string]struct{}, len(stored)+numTracks)
	for _, id := range stored {
		seen[id] = struct{}{}
	}

	var selected []string
	pages := 0
	for offset := 0; len(selected) < numTracks && pages < p.cfg.MaxPages && offset < catalog.MaxSearchOffset; offset += p.cfg.PageSize {
		pages++
		res, err := p.catalog.Search(ctx, catalog.SearchRequest{
			Query:  p.cfg.Query,
			Type:   catalog.SearchAlbum,
			Market: p.cfg.Market,
			Limit:  p.cfg.PageSize,
			Offset: offset,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, pages, ctx.Err()
			}
			p.logger.Warn("album page failed, skipping", "offset", offset, "err", err)
			continue
		}
		if len(res.Albums) == 0 {
			p.logger.Info("catalog exhausted", "offset", offset)
			break
		}

		for _, album := range res.Albums {
			remaining := numTracks - len(selected)
			if remaining <= 0 {
				break
			}
			tracks, err := p.catalog.AlbumTracks(ctx, album.ID, p.cfg.MaxTracksPerAlbum)
			if err != nil {
				if ctx.Err() != nil {
					return nil, pages, ctx.Err()
				}
				p.logger.Warn("album tracks failed, skipping", "album", album.ID, "err", err)
				continue
			}

			cutoff := min(remaining, p.cfg.MaxTracksPerAlbum)
			taken := 0
			for _, t := range tracks {
				if taken >= cutoff {
					break
				}
				if t.ID == "" {
					continue
				}
				if _, ok := seen[t.ID]; ok {
					continue
				}
				seen[t.ID] = struct{}{}
				selected = append(selected, t.ID)
				taken++
			}
		}

		p.logger.Info("fetched album page", "page", pages, "offset", offset, "selected", fmt.Sprintf("%d/%d", len(selected), numTracks))
	}
	return selected, pages, nil
}

// AddTracks fetches metadata and audio features for ids and upserts every
// track for which both were found. Ids without complete data are logged and
// returned in Skipped.
func (p *Pipeline) AddTracks(ctx context.Context, ids []string, preference bool) (AddResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addTracks(ctx, ids, preference)
}

func (p *Pipeline) addTracks(ctx context.Context, ids []string, preference bool) (AddResult, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return AddResult{}, nil
	}

	meta := make(map[string]*catalog.Track, len(ids))
	metaBatches := batches(ids, catalog.MaxTrackBatch)
	for i, batch := range metaBatches {
		records, err := p.catalog.Tracks(ctx, batch)
		if err != nil {
			return AddResult{}, fmt.Errorf("fetching metadata: %w", err)
		}
		for j, id := range batch {
			if j < len(records) && records[j] != nil {
				meta[id] = records[j]
			}
		}
		p.logger.Debug("fetched metadata", "batch", fmt.Sprintf("%d/%d", i+1, len(metaBatches)))
	}

	features := make(map[string]*catalog.AudioFeatures, len(ids))
	featureBatches := batches(ids, catalog.MaxAudioFeatureBatch)
	for i, batch := range featureBatches {
		records, err := p.catalog.AudioFeatures(ctx, batch)
		if err != nil {
			return AddResult{}, fmt.Errorf("fetching audio features: %w", err)
		}
		for j, id := range batch {
			if j < len(records) && records[j] != nil {
				features[id] = records[j]
			}
		}
		p.logger.Debug("fetched audio features", "batch", fmt.Sprintf("%d/%d", i+1, len(featureBatches)))
	}

	var tracks []track.Track
	var skipped []string
	for _, id := range ids {
		t, err := track.Extract(meta[id], features[id])
		if err != nil {
			p.logger.Warn("skipping track", "id", id, "err", err)
			skipped = append(skipped, id)
			continue
		}
		// The catalog may answer with a relinked id; keep the one we asked for.
		t.ID = id
		t.Preference = preference
		tracks = append(tracks, t)
	}

	if err := p.store.Upsert(ctx, tracks); err != nil {
		return AddResult{}, fmt.Errorf("storing tracks: %w", err)
	}
	return AddResult{Stored: len(tracks), Skipped: skipped}, nil
}

// dedupe drops empty and repeated ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func batches(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

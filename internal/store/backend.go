// Package store persists track records and ingest run history.
package store

import (
	"context"
	"time"

	"github.com/ademuri/track-recommender/internal/track"
)

// Backend is the keyed track collection every component reads and writes
// through. Find returns records in insertion order.
type Backend interface {
	Find(ctx context.Context, f Filter) ([]track.Track, error)
	IDs(ctx context.Context) ([]string, error)
	InsertMany(ctx context.Context, tracks []track.Track) error
	// Upsert replaces any record with the same id, so the store never holds
	// two records for one id.
	Upsert(ctx context.Context, tracks []track.Track) error
	DeleteOne(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, f Filter) (int64, error)
	// TopArtists counts matching tracks per artist, most tracks first.
	TopArtists(ctx context.Context, f Filter, limit int) ([]ArtistCount, error)

	SaveRun(ctx context.Context, run Run) error
	Runs(ctx context.Context, limit int) ([]Run, error)

	Close() error
}

// Filter selects track records. The zero value matches everything.
type Filter struct {
	Preference *bool
	IDs        []string
}

// Preferences matches the Preference Set.
func Preferences() Filter {
	t := true
	return Filter{Preference: &t}
}

// Candidates matches the Candidate Pool.
func Candidates() Filter {
	f := false
	return Filter{Preference: &f}
}

// Run records one ingestion run.
type Run struct {
	ID        string
	Started   time.Time
	Finished  time.Time
	Requested int
	Selected  int
	Stored    int
	Skipped   int
	Pages     int
	Partial   bool
}

// stamped returns a copy of tracks with AddedAt filled in where unset.
func stamped(tracks []track.Track, now time.Time) []track.Track {
	out := make([]track.Track, len(tracks))
	copy(out, tracks)
	for i := range out {
		if out[i].AddedAt.IsZero() {
			out[i].AddedAt = now
		}
	}
	return out
}

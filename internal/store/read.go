package store

import (
	"context"
	"fmt"

	"github.com/ademuri/track-recommender/internal/track"
)

// Find returns matching tracks in insertion order. A re-inserted track sorts
// after everything inserted before it.
func (s *Store) Find(ctx context.Context, f Filter) ([]track.Track, error) {
	where, args := f.where()
	query := "SELECT id, name, artist, album, preference, vector, added_at FROM Track" + where + " ORDER BY rowid"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()

	var tracks []track.Track
	for rows.Next() {
		var t track.Track
		var blob []byte
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Album, &t.Preference, &blob, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		if err := t.Vector.UnmarshalBinary(blob); err != nil {
			return nil, fmt.Errorf("decoding vector for %q: %w", t.ID, err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// IDs returns every stored id, in both partitions.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM Track ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Runs returns the most recent ingest runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started, finished, requested, selected, stored, skipped, pages, partial
		FROM IngestRun
		ORDER BY started DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Started, &r.Finished, &r.Requested, &r.Selected, &r.Stored, &r.Skipped, &r.Pages, &r.Partial); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

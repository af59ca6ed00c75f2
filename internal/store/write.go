package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ademuri/track-recommender/internal/track"
)

// InsertMany inserts a batch of tracks transactionally. Inserting an id that
// already exists fails the whole batch.
func (s *Store) InsertMany(ctx context.Context, tracks []track.Track) error {
	return s.writeTracks(ctx, tracks, false)
}

// Upsert deletes any existing record for each id, then inserts, in one
// transaction.
func (s *Store) Upsert(ctx context.Context, tracks []track.Track) error {
	return s.writeTracks(ctx, tracks, true)
}

func (s *Store) writeTracks(ctx context.Context, tracks []track.Track, replace bool) error {
	if len(tracks) == 0 {
		return nil
	}
	tracks = stamped(tracks, time.Now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tracks {
		if replace {
			if err := deleteTrack(ctx, tx, t.ID); err != nil {
				return err
			}
		}
		if err := insertTrack(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func deleteTrack(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM Track WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting track %q: %w", id, err)
	}
	return nil
}

func insertTrack(ctx context.Context, tx *sql.Tx, t track.Track) error {
	blob, err := t.Vector.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding vector for %q: %w", t.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO Track (id, name, artist, album, preference, vector, added_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Name, t.Artist, t.Album, t.Preference, blob, t.AddedAt)
	if err != nil {
		return fmt.Errorf("inserting track %q: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteOne(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM Track WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting track %q: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	where, args := f.where()
	res, err := s.db.ExecContext(ctx, "DELETE FROM Track"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting tracks: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) SaveRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO IngestRun
		(id, started, finished, requested, selected, stored, skipped, pages, partial)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Started, run.Finished, run.Requested, run.Selected, run.Stored, run.Skipped, run.Pages, run.Partial)
	if err != nil {
		return fmt.Errorf("saving run %q: %w", run.ID, err)
	}
	return nil
}

// where renders the filter as a SQL WHERE clause with its arguments.
func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Preference != nil {
		clauses = append(clauses, "preference = ?")
		args = append(args, *f.Preference)
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			clauses = append(clauses, "0")
		} else {
			clauses = append(clauses, "id IN (?"+strings.Repeat(", ?", len(f.IDs)-1)+")")
			for _, id := range f.IDs {
				args = append(args, id)
			}
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

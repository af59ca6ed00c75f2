package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ademuri/track-recommender/internal/track"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracks.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}

	return store
}

func testTrack(id string, pref bool, seed float64) track.Track {
	var v track.Vector
	for i := range v {
		v[i] = seed + float64(i)
	}
	return track.Track{
		ID:         id,
		Name:       "Name " + id,
		Artist:     "Artist " + id,
		Album:      "Album " + id,
		Preference: pref,
		Vector:     v,
	}
}

func TestNewIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tracks.db")
	for i := 0; i < 2; i++ {
		s, err := New(dbPath)
		if err != nil {
			t.Fatalf("New(%s) #%d error: %v", dbPath, i, err)
		}
		s.Close()
	}
}

func TestInsertAndFind(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	ctx := context.Background()

	tracks := []track.Track{
		testTrack("a", false, 1),
		testTrack("b", true, 2),
		testTrack("c", false, 3),
	}
	if err := s.InsertMany(ctx, tracks); err != nil {
		t.Fatalf("InsertMany failed: %v", err)
	}

	all, err := s.Find(ctx, Filter{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 tracks, got %d", len(all))
	}
	for i, id := range []string{"a", "b", "c"} {
		if all[i].ID != id {
			t.Errorf("Find()[%d].ID = %q, want %q", i, all[i].ID, id)
		}
	}
	if all[1].Vector != tracks[1].Vector {
		t.Errorf("Vector did not round-trip: got %v, want %v", all[1].Vector, tracks[1].Vector)
	}
	if all[0].Album != "Album a" {
		t.Errorf("Album = %q, want %q", all[0].Album, "Album a")
	}
	if all[0].AddedAt.IsZero() {
		t.Error("AddedAt was not set")
	}

	candidates, err := s.Find(ctx, Candidates())
	if err != nil {
		t.Fatalf("Find(candidates) failed: %v", err)
	}
	if len(candidates) != 2 || candidates[0].ID != "a" || candidates[1].ID != "c" {
		t.Errorf("Expected candidates [a c], got %v", candidates)
	}

	prefs, err := s.Find(ctx, Preferences())
	if err != nil {
		t.Fatalf("Find(preferences) failed: %v", err)
	}
	if len(prefs) != 1 || prefs[0].ID != "b" || !prefs[0].Preference {
		t.Errorf("Expected preferences [b], got %v", prefs)
	}

	byID, err := s.Find(ctx, Filter{IDs: []string{"c", "a"}})
	if err != nil {
		t.Fatalf("Find(ids) failed: %v", err)
	}
	if len(byID) != 2 {
		t.Errorf("Expected 2 tracks by id, got %d", len(byID))
	}

	none, err := s.Find(ctx, Filter{IDs: []string{}})
	if err != nil {
		t.Fatalf("Find(empty ids) failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no tracks for empty id list, got %d", len(none))
	}
}

func TestInsertManyRejectsDuplicateID(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	ctx := context.Background()

	if err := s.InsertMany(ctx, []track.Track{testTrack("a", false, 1)}); err != nil {
		t.Fatalf("InsertMany failed: %v", err)
	}
	err := s.InsertMany(ctx, []track.Track{testTrack("b", false, 2), testTrack("a", false, 3)})
	if err == nil {
		t.Fatal("Expected duplicate id to fail")
	}

	ids, err := s.IDs(ctx)
	if err != nil {
		t.Fatalf("IDs failed: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("Expected failed batch to roll back, got ids %v", ids)
	}
}

func TestUpsertReplaces(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	ctx := context.Background()

	if err := s.Upsert(ctx, []track.Track{testTrack("a", false, 1), testTrack("b", false, 2)}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	replacement := testTrack("a", true, 100)
	replacement.Name = "Replacement"
	if err := s.Upsert(ctx, []track.Track{replacement}); err != nil {
		t.Fatalf("Upsert (repeat) failed: %v", err)
	}

	all, err := s.Find(ctx, Filter{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 tracks after upsert, got %d", len(all))
	}
	// Replaced record moves to the end.
	if all[1].ID != "a" || all[1].Name != "Replacement" || !all[1].Preference {
		t.Errorf("Expected replaced record last, got %+v", all[1])
	}
	if all[1].Vector != replacement.Vector {
		t.Errorf("Expected last write to win, got vector %v", all[1].Vector)
	}
}

func TestUpsertDoesNotMutateInput(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	tracks := []track.Track{testTrack("a", false, 1)}
	if err := s.Upsert(context.Background(), tracks); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if !tracks[0].AddedAt.IsZero() {
		t.Error("Upsert modified the caller's slice")
	}
}

func TestDelete(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	ctx := context.Background()

	tracks := []track.Track{
		testTrack("a", true, 1),
		testTrack("b", true, 2),
		testTrack("c", false, 3),
	}
	if err := s.InsertMany(ctx, tracks); err != nil {
		t.Fatalf("InsertMany failed: %v", err)
	}

	if err := s.DeleteOne(ctx, "c"); err != nil {
		t.Fatalf("DeleteOne failed: %v", err)
	}
	// Deleting a missing id is not an error.
	if err := s.DeleteOne(ctx, "missing"); err != nil {
		t.Fatalf("DeleteOne(missing) failed: %v", err)
	}

	n, err := s.DeleteMany(ctx, Preferences())
	if err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 deleted, got %d", n)
	}

	ids, err := s.IDs(ctx)
	if err != nil {
		t.Fatalf("IDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected empty store, got %v", ids)
	}
}

func TestRuns(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := Run{ID: "r1", Started: base, Finished: base.Add(time.Minute), Requested: 10, Selected: 10, Stored: 9, Skipped: 1, Pages: 1}
	newer := Run{ID: "r2", Started: base.Add(time.Hour), Finished: base.Add(time.Hour + time.Minute), Requested: 50, Selected: 20, Stored: 20, Pages: 20, Partial: true}

	for _, r := range []Run{older, newer} {
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun(%q) error: %v", r.ID, err)
		}
	}

	runs, err := s.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "r2" || !runs[0].Partial || runs[0].Pages != 20 {
		t.Errorf("Expected newest partial run first, got %+v", runs[0])
	}
	if runs[1].Skipped != 1 || runs[1].Stored != 9 {
		t.Errorf("Unexpected counts for older run: %+v", runs[1])
	}

	limited, err := s.Runs(ctx, 1)
	if err != nil {
		t.Fatalf("Runs(1) failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 run, got %d", len(limited))
	}
}

func TestMongoFilter(t *testing.T) {
	if got := mongoFilter(Filter{}); len(got) != 0 {
		t.Errorf("Expected empty filter, got %v", got)
	}

	got := mongoFilter(Preferences())
	if got["preference"] != 1 {
		t.Errorf("Expected preference 1, got %v", got["preference"])
	}

	got = mongoFilter(Filter{Preference: Candidates().Preference, IDs: []string{"a"}})
	if got["preference"] != 0 {
		t.Errorf("Expected preference 0, got %v", got["preference"])
	}
	if _, ok := got["_id"]; !ok {
		t.Errorf("Expected _id clause, got %v", got)
	}
}

func TestTrackDocRoundTrip(t *testing.T) {
	want := testTrack("a", true, 5)
	want.AddedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	d, err := newTrackDoc(want)
	if err != nil {
		t.Fatalf("newTrackDoc failed: %v", err)
	}
	if d.Preference != 1 {
		t.Errorf("Preference = %d, want 1", d.Preference)
	}

	got, err := d.track()
	if err != nil {
		t.Fatalf("track() failed: %v", err)
	}
	if got != want {
		t.Errorf("Round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestTopArtists(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	ctx := context.Background()

	tracks := []track.Track{
		testTrack("a", false, 1),
		testTrack("b", false, 2),
		testTrack("c", false, 3),
		testTrack("d", true, 4),
	}
	tracks[1].Artist = "Artist a"
	tracks[2].Artist = "Artist a"
	if err := s.InsertMany(ctx, tracks); err != nil {
		t.Fatalf("InsertMany failed: %v", err)
	}

	top, err := s.TopArtists(ctx, Filter{}, 0)
	if err != nil {
		t.Fatalf("TopArtists failed: %v", err)
	}
	want := []ArtistCount{{"Artist a", 3}, {"Artist d", 1}}
	if len(top) != len(want) {
		t.Fatalf("TopArtists = %v, want %v", top, want)
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("TopArtists()[%d] = %v, want %v", i, top[i], want[i])
		}
	}

	prefs, err := s.TopArtists(ctx, Preferences(), 10)
	if err != nil {
		t.Fatalf("TopArtists(preferences) failed: %v", err)
	}
	if len(prefs) != 1 || prefs[0].Artist != "Artist d" {
		t.Errorf("Expected only Artist d, got %v", prefs)
	}

	limited, err := s.TopArtists(ctx, Filter{}, 1)
	if err != nil {
		t.Fatalf("TopArtists(limit 1) failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 artist, got %d", len(limited))
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/track-recommender/internal/catalog"
	"github.com/ademuri/track-recommender/internal/recommend"
	"github.com/ademuri/track-recommender/internal/store"
	"github.com/ademuri/track-recommender/internal/track"
)

func createTestDb(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testTracks(prefix string, n int, pref bool, start float64) []track.Track {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]track.Track, n)
	for i := range out {
		id := fmt.Sprintf("%s%d", prefix, i)
		var v track.Vector
		v[track.Acousticness] = start + float64(i)
		v[track.Tempo] = 120
		out[i] = track.Track{
			ID:         id,
			Name:       "Name " + id,
			Artist:     "Artist " + id,
			Preference: pref,
			Vector:     v,
			AddedAt:    base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func seedTracks(t *testing.T, db store.Backend, tracks ...[]track.Track) {
	t.Helper()
	var all []track.Track
	for _, ts := range tracks {
		all = append(all, ts...)
	}
	if err := db.InsertMany(context.Background(), all); err != nil {
		t.Fatalf("InsertMany failed: %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"populate", "search", "prefer", "recommend", "reset-preferences", "list-tracks", "list-runs", "top-artists"} {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil {
			t.Errorf("Find(%q) error: %v", name, err)
			continue
		}
		if c.Name() != name {
			t.Errorf("Find(%q) returned %q", name, c.Name())
		}
	}
}

func TestResetPreferences(t *testing.T) {
	db := createTestDb(t)
	ctx := context.Background()
	seedTracks(t, db, testTracks("c", 3, false, 1), testTracks("p", 2, true, 1))

	n, err := resetPreferences(ctx, db)
	if err != nil {
		t.Fatalf("resetPreferences error: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 deleted, got %d", n)
	}

	remaining, err := listTracks(ctx, db, false)
	if err != nil {
		t.Fatalf("listTracks error: %v", err)
	}
	if len(remaining) != 3 {
		t.Errorf("Expected 3 candidates to remain, got %d", len(remaining))
	}
}

func TestListTracks(t *testing.T) {
	db := createTestDb(t)
	ctx := context.Background()
	seedTracks(t, db, testTracks("c", 3, false, 1), testTracks("p", 2, true, 1))

	prefs, err := listTracks(ctx, db, true)
	if err != nil {
		t.Fatalf("listTracks error: %v", err)
	}
	if len(prefs) != 2 || prefs[0].ID != "p0" {
		t.Errorf("Expected preferences [p0 p1], got %v", prefs)
	}

	out := trackTable(prefs).String()
	if !strings.Contains(out, "Name p1") || !strings.Contains(out, "2 tracks, 2 preferences") {
		t.Errorf("Unexpected table:\n%s", out)
	}
}

func TestRecommendTracksSimilarity(t *testing.T) {
	db := createTestDb(t)
	seedTracks(t, db, testTracks("c", 5, false, 1), testTracks("p", 1, true, 3))

	recs, err := recommendTracks(context.Background(), db, RecommendConfig{NumResults: 2, Method: recommend.MethodSimilarity}, nil)
	if err != nil {
		t.Fatalf("recommendTracks error: %v", err)
	}
	// p0 has acousticness 3; candidates run 1..5.
	if len(recs) != 2 || recs[0].ID != "c2" {
		t.Errorf("Expected c2 first, got %v", recs)
	}

	out := recommendationTable(recs, recommend.MethodSimilarity).String()
	if !strings.Contains(out, "2 recommendations (similarity)") {
		t.Errorf("Unexpected table:\n%s", out)
	}
}

func TestRecommendTracksEmptyPool(t *testing.T) {
	db := createTestDb(t)
	seedTracks(t, db, testTracks("p", 1, true, 3))

	_, err := recommendTracks(context.Background(), db, RecommendConfig{Method: recommend.MethodSimilarity}, nil)
	if err == nil {
		t.Fatal("Expected error for empty candidate pool, got nil")
	}
}

func TestRecommendTracksSequence(t *testing.T) {
	db := createTestDb(t)
	seedTracks(t, db, testTracks("c", 4, false, 1), testTracks("p", 10, true, 1))

	weights := strings.TrimSuffix(strings.Repeat("0,", recommend.LogisticInputs), ",")
	modelPath := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(modelPath, []byte(fmt.Sprintf(`{"weights":[%s],"bias":1}`, weights)), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	config := RecommendConfig{NumResults: 10, Method: recommend.MethodSequence, ModelPath: modelPath, Seed: 3}
	recs, err := recommendTracks(context.Background(), db, config, nil)
	if err != nil {
		t.Fatalf("recommendTracks error: %v", err)
	}
	if len(recs) != 4 {
		t.Errorf("Expected every candidate accepted, got %d", len(recs))
	}

	config.ModelPath = filepath.Join(t.TempDir(), "missing.json")
	if _, err := recommendTracks(context.Background(), db, config, nil); err == nil {
		t.Error("Expected error for missing model, got nil")
	}
}

func TestOpenBackend(t *testing.T) {
	viper.Reset()
	ctx := context.Background()

	viper.Set("store", "sqlite")
	viper.Set("database", filepath.Join(t.TempDir(), "test.db"))
	db, err := openBackend(ctx)
	if err != nil {
		t.Fatalf("openBackend(sqlite) error: %v", err)
	}
	db.Close()

	viper.Set("store", "mongo")
	viper.Set("mongo_uri", "")
	if _, err := openBackend(ctx); err == nil {
		t.Error("Expected error for mongo without a URI, got nil")
	}

	viper.Set("store", "redis")
	if _, err := openBackend(ctx); err == nil {
		t.Error("Expected error for unknown store, got nil")
	}
}

func TestSearchTable(t *testing.T) {
	out := searchTable([]catalog.TrackSummary{{ID: "t1", Name: "Lies", Artist: "Low", Album: "Double Negative"}}).String()
	for _, want := range []string{"Lies", "Low", "Double Negative", "1 tracks found"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in table:\n%s", want, out)
		}
	}
}

func TestRunTable(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := runTable([]store.Run{{ID: "run-1", Started: start, Finished: start.Add(90 * time.Second), Requested: 10, Stored: 8, Skipped: 2, Pages: 3, Partial: true}}).String()
	for _, want := range []string{"run-1", "1m30s", "1 runs"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in table:\n%s", want, out)
		}
	}
}

// Package catalogtest provides an in-memory catalog.Client that records every
// call made against it.
package catalogtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ademuri/track-recommender/internal/catalog"
)

// Fake serves a fixed catalog. Albums are returned by album searches in the
// order they were added; track searches match every track.
type Fake struct {
	mu sync.Mutex

	albums      []catalog.Album
	albumTracks map[string][]catalog.TrackSummary
	tracks      map[string]*catalog.Track
	features    map[string]*catalog.AudioFeatures
	searchHits  []catalog.TrackSummary

	// Err, when set, is returned by every call.
	Err error
	// AlbumErr fails AlbumTracks for specific albums.
	AlbumErr map[string]error
	// SearchErrAt fails album searches at the given offsets.
	SearchErrAt map[int]error

	SearchCalls        []catalog.SearchRequest
	TrackCalls         [][]string
	AudioFeatureCalls  [][]string
	AlbumTrackRequests []string
}

var _ catalog.Client = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		albumTracks: make(map[string][]catalog.TrackSummary),
		tracks:      make(map[string]*catalog.Track),
		features:    make(map[string]*catalog.AudioFeatures),
		AlbumErr:    make(map[string]error),
		SearchErrAt: make(map[int]error),
	}
}

// AddAlbum registers an album whose tracks all have metadata and features.
func (f *Fake) AddAlbum(albumID string, trackIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	album := catalog.Album{ID: albumID, Name: "Album " + albumID}
	f.albums = append(f.albums, album)
	for i, id := range trackIDs {
		f.albumTracks[albumID] = append(f.albumTracks[albumID], catalog.TrackSummary{ID: id, Name: "Track " + id})
		f.tracks[id] = &catalog.Track{
			ID:      id,
			Name:    "Track " + id,
			Artists: []catalog.Artist{{ID: "artist-" + albumID, Name: "Artist " + albumID}, {ID: "guest", Name: "Guest"}},
			Album:   album,
		}
		f.features[id] = Features(id, float64(i+1))
	}
}

// AddTrack registers a standalone track. Either record may be nil.
func (f *Fake) AddTrack(t *catalog.Track, af *catalog.AudioFeatures) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t != nil {
		f.tracks[t.ID] = t
	}
	if af != nil {
		f.features[af.ID] = af
	}
}

// DropFeatures removes the audio-feature record for id.
func (f *Fake) DropFeatures(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.features, id)
}

// SetSearchHits sets the results served to track searches.
func (f *Fake) SetSearchHits(hits []catalog.TrackSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchHits = hits
}

// Features builds a feature record whose values are derived from seed.
func Features(id string, seed float64) *catalog.AudioFeatures {
	return &catalog.AudioFeatures{
		ID:               id,
		Acousticness:     seed / 10,
		Danceability:     seed / 20,
		DurationMs:       180000 + seed,
		Energy:           seed / 30,
		Instrumentalness: seed / 40,
		Key:              seed,
		Liveness:         seed / 50,
		Loudness:         -seed,
		Mode:             1,
		Speechiness:      seed / 60,
		Tempo:            100 + seed,
		TimeSignature:    4,
		Valence:          seed / 70,
	}
}

func (f *Fake) Search(ctx context.Context, req catalog.SearchRequest) (catalog.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SearchCalls = append(f.SearchCalls, req)
	if f.Err != nil {
		return catalog.SearchResult{}, f.Err
	}
	if req.Limit > catalog.MaxSearchLimit {
		return catalog.SearchResult{}, fmt.Errorf("search limit %d: %w", req.Limit, catalog.ErrBatchTooLarge)
	}

	switch req.Type {
	case catalog.SearchAlbum:
		if err := f.SearchErrAt[req.Offset]; err != nil {
			return catalog.SearchResult{}, err
		}
		return catalog.SearchResult{Albums: page(f.albums, req.Offset, req.Limit)}, nil
	default:
		return catalog.SearchResult{Tracks: page(f.searchHits, req.Offset, req.Limit)}, nil
	}
}

func (f *Fake) Tracks(ctx context.Context, ids []string) ([]*catalog.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TrackCalls = append(f.TrackCalls, append([]string(nil), ids...))
	if f.Err != nil {
		return nil, f.Err
	}
	if err := catalog.CheckBatch("tracks", len(ids), catalog.MaxTrackBatch); err != nil {
		return nil, err
	}
	out := make([]*catalog.Track, len(ids))
	for i, id := range ids {
		out[i] = f.tracks[id]
	}
	return out, nil
}

func (f *Fake) AudioFeatures(ctx context.Context, ids []string) ([]*catalog.AudioFeatures, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AudioFeatureCalls = append(f.AudioFeatureCalls, append([]string(nil), ids...))
	if f.Err != nil {
		return nil, f.Err
	}
	if err := catalog.CheckBatch("audio-features", len(ids), catalog.MaxAudioFeatureBatch); err != nil {
		return nil, err
	}
	out := make([]*catalog.AudioFeatures, len(ids))
	for i, id := range ids {
		out[i] = f.features[id]
	}
	return out, nil
}

func (f *Fake) AlbumTracks(ctx context.Context, albumID string, limit int) ([]catalog.TrackSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AlbumTrackRequests = append(f.AlbumTrackRequests, albumID)
	if f.Err != nil {
		return nil, f.Err
	}
	if err := f.AlbumErr[albumID]; err != nil {
		return nil, err
	}
	return page(f.albumTracks[albumID], 0, limit), nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[offset:end]...)
}

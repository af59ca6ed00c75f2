package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ademuri/track-recommender/internal/track"
)

// MongoStore keeps tracks in a MongoDB "tracks" collection keyed by _id.
type MongoStore struct {
	client *mongo.Client
	tracks *mongo.Collection
	runs   *mongo.Collection
}

var _ Backend = (*MongoStore)(nil)

// trackDoc keeps the field names and 0/1 preference flag used by existing
// collections.
type trackDoc struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Artist     string    `bson:"artists"`
	Album      string    `bson:"album,omitempty"`
	Preference int       `bson:"preference"`
	Vector     []byte    `bson:"vector"`
	AddedAt    time.Time `bson:"added_at"`
}

type runDoc struct {
	ID        string    `bson:"_id"`
	Started   time.Time `bson:"started"`
	Finished  time.Time `bson:"finished"`
	Requested int       `bson:"requested"`
	Selected  int       `bson:"selected"`
	Stored    int       `bson:"stored"`
	Skipped   int       `bson:"skipped"`
	Pages     int       `bson:"pages"`
	Partial   bool      `bson:"partial"`
}

func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client: client,
		tracks: db.Collection("tracks"),
		runs:   db.Collection("ingest_runs"),
	}, nil
}

func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}

func (m *MongoStore) Find(ctx context.Context, f Filter) ([]track.Track, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: 1}})
	cursor, err := m.tracks.Find(ctx, mongoFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}

	var docs []trackDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading tracks: %w", err)
	}

	tracks := make([]track.Track, 0, len(docs))
	for _, d := range docs {
		t, err := d.track()
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func (m *MongoStore) IDs(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "added_at", Value: 1}})
	cursor, err := m.tracks.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying ids: %w", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading ids: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (m *MongoStore) InsertMany(ctx context.Context, tracks []track.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(tracks))
	for _, t := range stamped(tracks, time.Now().UTC()) {
		d, err := newTrackDoc(t)
		if err != nil {
			return err
		}
		docs = append(docs, d)
	}
	if _, err := m.tracks.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting tracks: %w", err)
	}
	return nil
}

// Upsert replaces each document by _id. A single-document replace is atomic,
// which gives the same outcome as delete-then-insert without the window in
// between.
func (m *MongoStore) Upsert(ctx context.Context, tracks []track.Track) error {
	opts := options.Replace().SetUpsert(true)
	for _, t := range stamped(tracks, time.Now().UTC()) {
		d, err := newTrackDoc(t)
		if err != nil {
			return err
		}
		if _, err := m.tracks.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, opts); err != nil {
			return fmt.Errorf("upserting track %q: %w", t.ID, err)
		}
	}
	return nil
}

func (m *MongoStore) DeleteOne(ctx context.Context, id string) error {
	if _, err := m.tracks.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("deleting track %q: %w", id, err)
	}
	return nil
}

func (m *MongoStore) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	res, err := m.tracks.DeleteMany(ctx, mongoFilter(f))
	if err != nil {
		return 0, fmt.Errorf("deleting tracks: %w", err)
	}
	return res.DeletedCount, nil
}

func (m *MongoStore) SaveRun(ctx context.Context, run Run) error {
	d := runDoc(run)
	opts := options.Replace().SetUpsert(true)
	if _, err := m.runs.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, opts); err != nil {
		return fmt.Errorf("saving run %q: %w", run.ID, err)
	}
	return nil
}

func (m *MongoStore) Runs(ctx context.Context, limit int) ([]Run, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := m.runs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}

	var docs []runDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	runs := make([]Run, 0, len(docs))
	for _, d := range docs {
		runs = append(runs, Run(d))
	}
	return runs, nil
}

func newTrackDoc(t track.Track) (trackDoc, error) {
	blob, err := t.Vector.MarshalBinary()
	if err != nil {
		return trackDoc{}, fmt.Errorf("encoding vector for %q: %w", t.ID, err)
	}
	pref := 0
	if t.Preference {
		pref = 1
	}
	return trackDoc{
		ID:         t.ID,
		Name:       t.Name,
		Artist:     t.Artist,
		Album:      t.Album,
		Preference: pref,
		Vector:     blob,
		AddedAt:    t.AddedAt,
	}, nil
}

func (d trackDoc) track() (track.Track, error) {
	t := track.Track{
		ID:         d.ID,
		Name:       d.Name,
		Artist:     d.Artist,
		Album:      d.Album,
		Preference: d.Preference != 0,
		AddedAt:    d.AddedAt,
	}
	if err := t.Vector.UnmarshalBinary(d.Vector); err != nil {
		return track.Track{}, fmt.Errorf("decoding vector for %q: %w", d.ID, err)
	}
	return t, nil
}

func mongoFilter(f Filter) bson.M {
	filter := bson.M{}
	if f.Preference != nil {
		if *f.Preference {
			filter["preference"] = 1
		} else {
			filter["preference"] = 0
		}
	}
	if f.IDs != nil {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	return filter
}

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

type ArtistCount struct {
	Artist string
	Count  int64
}

// TopArtists counts matching tracks per artist, most tracks first. A
// non-positive limit returns every artist.
func (s *Store) TopArtists(ctx context.Context, f Filter, limit int) ([]ArtistCount, error) {
	where, args := f.where()
	query := `
	SELECT artist, COUNT(*)
	FROM Track` + where + `
	GROUP BY artist
	ORDER BY COUNT(*) DESC, artist
	`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying top artists: %w", err)
	}
	defer rows.Close()

	var results []ArtistCount
	for rows.Next() {
		var ac ArtistCount
		if err := rows.Scan(&ac.Artist, &ac.Count); err != nil {
			return nil, err
		}
		results = append(results, ac)
	}
	return results, rows.Err()
}

func (m *MongoStore) TopArtists(ctx context.Context, f Filter, limit int) ([]ArtistCount, error) {
	pipeline := []bson.M{
		{"$match": mongoFilter(f)},
		{"$group": bson.M{"_id": "$artists", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	cur, err := m.tracks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating top artists: %w", err)
	}
	defer cur.Close(ctx)

	var results []ArtistCount
	for cur.Next(ctx) {
		var doc struct {
			Artist string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding artist count: %w", err)
		}
		results = append(results, ArtistCount{Artist: doc.Artist, Count: doc.Count})
	}
	return results, cur.Err()
}

// Package track defines the persisted track record and its audio feature
// vector.
package track

import "time"

// Dimensions is the length of every feature vector.
const Dimensions = 13

// Canonical dimension order of a Vector.
const (
	Acousticness = iota
	Danceability
	Duration
	Energy
	Instrumentalness
	Key
	Liveness
	Loudness
	Mode
	Speechiness
	Tempo
	TimeSignature
	Valence
)

// DimensionNames lists the vector dimensions in canonical order.
var DimensionNames = [Dimensions]string{
	"acousticness",
	"danceability",
	"duration",
	"energy",
	"instrumentalness",
	"key",
	"liveness",
	"loudness",
	"mode",
	"speechiness",
	"tempo",
	"time_signature",
	"valence",
}

type Vector [Dimensions]float64

// Track is one catalog item with its feature vector and preference flag.
type Track struct {
	ID   string
	Name string
	// Artist is the first credited artist only.
	Artist     string
	Album      string
	Preference bool
	Vector     Vector
	AddedAt    time.Time
}

package track

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodedSize is the byte length of an encoded Vector: 13 little-endian
// IEEE-754 float64 values in canonical order, no header.
const EncodedSize = Dimensions * 8

// MarshalBinary encodes the vector for storage.
func (v Vector) MarshalBinary() ([]byte, error) {
	buf := make([]byte, EncodedSize)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf, nil
}

// UnmarshalBinary decodes a vector produced by MarshalBinary.
func (v *Vector) UnmarshalBinary(b []byte) error {
	if len(b) != EncodedSize {
		return fmt.Errorf("invalid vector blob length %d: want %d", len(b), EncodedSize)
	}
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return nil
}

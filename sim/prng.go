package sim

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// NewSeededRNG returns a generator seeded from the first eight bytes of the
// seed's SHA-256, so the same seed string always replays the same walk.
func NewSeededRNG(seed string) *rand.Rand {
	hash := sha256.Sum256([]byte(seed))
	seedInt := int64(binary.BigEndian.Uint64(hash[:8]))
	return rand.New(rand.NewSource(seedInt))
}

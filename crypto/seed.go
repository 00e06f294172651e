package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RoundSeed is a committed random seed: Hash is published when a round
// starts and Seed is revealed when it ends.
type RoundSeed struct {
	Seed string `json:"seed"`
	Hash string `json:"hash"`
}

func NewRoundSeed() (RoundSeed, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return RoundSeed{}, fmt.Errorf("generate seed: %w", err)
	}

	seed := hex.EncodeToString(bytes)
	return RoundSeed{Seed: seed, Hash: HashSeed(seed)}, nil
}

func HashSeed(seed string) string {
	h := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(h[:])
}

func Verify(seed, hash string) bool {
	return HashSeed(seed) == hash
}

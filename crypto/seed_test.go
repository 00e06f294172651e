package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoundSeed(t *testing.T) {
	a, err := NewRoundSeed()
	require.NoError(t, err)
	b, err := NewRoundSeed()
	require.NoError(t, err)

	assert.Len(t, a.Seed, 64)
	assert.Len(t, a.Hash, 64)
	assert.NotEqual(t, a.Seed, b.Seed)
	assert.True(t, Verify(a.Seed, a.Hash))
	assert.False(t, Verify(b.Seed, a.Hash))
}

func TestHashSeed(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashSeed("abc"))
}

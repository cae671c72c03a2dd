package storage

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.db")

	store, err := Open(path)
	require.NoError(t, err)

	start, ceiling, err := store.Reserve("lobby", "alice", 128)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), start)
	assert.Equal(t, uint32(129), ceiling)

	start, ceiling, err = store.Reserve("lobby", "alice", 128)
	require.NoError(t, err)
	assert.Equal(t, uint32(129), start)
	assert.Equal(t, uint32(257), ceiling)

	// Different peer and session are independent
	start, _, err = store.Reserve("lobby", "bob", 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), start)
	start, _, err = store.Reserve("ops", "alice", 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), start)

	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	start, ceiling, err = reopened.Reserve("lobby", "alice", 128)
	require.NoError(t, err)
	assert.Equal(t, uint32(257), start, "restart continues above every reserved number")
	assert.Equal(t, uint32(385), ceiling)
}

func TestMemoryReserver(t *testing.T) {
	reserver := NewMemoryReserver()
	defer reserver.Close()

	start, ceiling, err := reserver.Reserve("s", "p", 4)
	require.NoError(t, err)
	assert.Equal(t, [2]uint32{1, 5}, [2]uint32{start, ceiling})

	start, ceiling, err = reserver.Reserve("s", "p", 4)
	require.NoError(t, err)
	assert.Equal(t, [2]uint32{5, 9}, [2]uint32{start, ceiling})

	_, _, err = reserver.Reserve("s", "p", 0)
	assert.Error(t, err)
}

func TestNextBlockExhaustion(t *testing.T) {
	_, _, err := nextBlock(math.MaxUint32-2, 8)
	assert.ErrorIs(t, err, ErrExhausted)

	start, ceiling, err := nextBlock(math.MaxUint32-8, 8)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32-8), start)
	assert.Equal(t, uint32(math.MaxUint32), ceiling)
}

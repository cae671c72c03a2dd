package keystore

import (
	"bytes"
	"os"
	"path/filepath"
	"smcp/pkg/protocol"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Cheap KDF for tests
	defaultParams = KDFParams{Time: 1, Memory: 1024, Threads: 1}
	os.Exit(m.Run())
}

func TestCreateOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "keystore.smks")
	password := []byte("correct horse")

	store, err := Create(path, password)
	require.NoError(t, err)
	require.NoError(t, store.Generate("lobby", 256))
	require.NoError(t, store.Set("ops", bytes.Repeat([]byte{7}, 32)))
	require.NoError(t, store.Save())
	lobbyKey, err := store.Key("lobby")
	require.NoError(t, err)
	store.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := Open(path, password)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []string{"lobby", "ops"}, reopened.Aliases())
	got, err := reopened.Key("lobby")
	require.NoError(t, err)
	assert.Equal(t, lobbyKey, got)
	assert.Len(t, got, 32)

	ops, err := reopened.Key("ops")
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{7}, 32), ops)
}

func TestKeyReturnsCopy(t *testing.T) {
	store, err := Create(filepath.Join(t.TempDir(), "ks"), []byte("pw"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("a", bytes.Repeat([]byte{1}, 16)))
	key, err := store.Key("a")
	require.NoError(t, err)
	key[0] = 0xFF

	again, err := store.Key("a")
	require.NoError(t, err)
	assert.Equal(t, byte(1), again[0])
}

func TestOpenFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ks")
	store, err := Create(path, []byte("secret"))
	require.NoError(t, err)
	require.NoError(t, store.Generate("a", 128))
	require.NoError(t, store.Save())
	store.Close()

	blob, err := os.ReadFile(path)
	require.NoError(t, err)

	tampered := bytes.Clone(blob)
	tampered[len(tampered)-1] ^= 0x01
	tamperedPath := filepath.Join(dir, "tampered")
	require.NoError(t, os.WriteFile(tamperedPath, tampered, 0600))

	headerTampered := bytes.Clone(blob)
	headerTampered[len(fileMagic)] ^= 0x01
	headerPath := filepath.Join(dir, "header")
	require.NoError(t, os.WriteFile(headerPath, headerTampered, 0600))

	garbagePath := filepath.Join(dir, "garbage")
	require.NoError(t, os.WriteFile(garbagePath, []byte("not a keystore at all, clearly not"), 0600))

	tests := []struct {
		name     string
		path     string
		password string
		expect   error
	}{
		{"wrong password", path, "guess", ErrBadPassword},
		{"tampered body", tamperedPath, "secret", ErrBadPassword},
		{"tampered salt", headerPath, "secret", ErrBadPassword},
		{"not a keystore", garbagePath, "secret", protocol.ErrConfiguration},
		{"missing", filepath.Join(dir, "nope"), "secret", protocol.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.path, []byte(tt.password))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expect)
			assert.ErrorIs(t, err, protocol.ErrConfiguration)
		})
	}
}

func TestCreateRejects(t *testing.T) {
	dir := t.TempDir()
	_, err := Create(filepath.Join(dir, "ks"), nil)
	assert.ErrorIs(t, err, protocol.ErrConfiguration)

	store, err := Create(filepath.Join(dir, "ks"), []byte("pw"))
	require.NoError(t, err)
	store.Close()

	_, err = Create(filepath.Join(dir, "ks"), []byte("pw"))
	assert.ErrorIs(t, err, protocol.ErrConfiguration)
}

func TestSetAndGenerateValidation(t *testing.T) {
	store, err := Create(filepath.Join(t.TempDir(), "ks"), []byte("pw"))
	require.NoError(t, err)
	defer store.Close()

	tests := []struct {
		name string
		run  func() error
	}{
		{"empty alias", func() error { return store.Set("", make([]byte, 16)) }},
		{"short key", func() error { return store.Set("a", make([]byte, 8)) }},
		{"long key", func() error { return store.Set("a", make([]byte, 65)) }},
		{"odd bits", func() error { return store.Generate("a", 130) }},
		{"too many bits", func() error { return store.Generate("a", 1024) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), protocol.ErrConfiguration)
		})
	}

	_, err = store.Key("missing")
	assert.ErrorIs(t, err, ErrUnknownAlias)
}

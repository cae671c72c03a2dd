package hash

import (
	"bytes"
	"crypto/sha512"
	"smcp/internal/crypto"
	"testing"
)

func TestConstructor(t *testing.T) {
	tests := []struct {
		name      string
		hashName  string
		size      int
		expectErr bool
	}{
		{"sha256", crypto.HashSHA256, 32, false},
		{"sha512", crypto.HashSHA512, 64, false},
		{"sha3", crypto.HashSHA3_256, 32, false},
		{"blake2b", crypto.HashBLAKE2b256, 32, false},
		{"case insensitive", "sha-256", 32, false},
		{"unknown", "MD5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newHash, err := Constructor(tt.hashName)
			if (err != nil) != tt.expectErr {
				t.Fatalf("Constructor() error = %v", err)
			}
			if err != nil {
				return
			}
			h := newHash()
			h.Write([]byte("payload"))
			if got := len(h.Sum(nil)); got != tt.size {
				t.Fatalf("digest size %d, want %d", got, tt.size)
			}
		})
	}
}

func TestMultipleSlices(t *testing.T) {
	joined := sha512.Sum512([]byte("Hello, world!"))
	empty := sha512.Sum512(nil)

	tests := []struct {
		name     string
		input    [][]byte
		expected []byte
	}{
		{"nil input", nil, empty[:]},
		{"single slice", [][]byte{[]byte("Hello, world!")}, joined[:]},
		{"split slices", [][]byte{[]byte("Hello, "), []byte("world!")}, joined[:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MultipleSlices(tt.input...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.expected) {
				t.Fatalf("hash mismatch")
			}
		})
	}
}

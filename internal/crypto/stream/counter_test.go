package stream

import (
	"bytes"
	"smcp/internal/crypto"
	"testing"
)

func TestXORRoundTrip(t *testing.T) {
	seed := []byte{0, 0, 0, 7, 1, 2, 3, 4, 5, 6, 7, 8}
	plaintext := []byte("length preserving message body")

	tests := []struct {
		name      string
		algorithm string
		key       []byte
		expectErr bool
	}{
		{"aes128", crypto.AlgAES, bytes.Repeat([]byte{1}, 16), false},
		{"aes192", crypto.AlgAES, bytes.Repeat([]byte{2}, 24), false},
		{"aes256", crypto.AlgAES, bytes.Repeat([]byte{3}, 32), false},
		{"chacha20", crypto.AlgChaCha20, bytes.Repeat([]byte{4}, 32), false},
		{"lowercase", "aes", bytes.Repeat([]byte{1}, 16), false},
		{"bad aes key", crypto.AlgAES, bytes.Repeat([]byte{1}, 20), true},
		{"bad chacha key", crypto.AlgChaCha20, bytes.Repeat([]byte{1}, 16), true},
		{"unknown cipher", "DES", bytes.Repeat([]byte{1}, 8), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := XOR(tt.algorithm, tt.key, seed, plaintext)
			if (err != nil) != tt.expectErr {
				t.Fatalf("XOR() error = %v", err)
			}
			if err != nil {
				return
			}
			if len(ciphertext) != len(plaintext) {
				t.Fatalf("ciphertext length %d, want %d", len(ciphertext), len(plaintext))
			}
			if bytes.Equal(ciphertext, plaintext) {
				t.Fatalf("ciphertext equals plaintext")
			}
			decrypted, err := XOR(tt.algorithm, tt.key, seed, ciphertext)
			if err != nil {
				t.Fatalf("decrypt error: %v", err)
			}
			if !bytes.Equal(decrypted, plaintext) {
				t.Fatalf("round trip mismatch")
			}
		})
	}
}

func TestSeedChangesKeystream(t *testing.T) {
	key := bytes.Repeat([]byte{9}, 32)
	plaintext := make([]byte, 32)
	seedA := []byte{0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	seedB := []byte{0, 0, 0, 2, 1, 1, 1, 1, 1, 1, 1, 1}

	for _, algorithm := range []string{crypto.AlgAES, crypto.AlgChaCha20} {
		a, _ := XOR(algorithm, key, seedA, plaintext)
		b, _ := XOR(algorithm, key, seedB, plaintext)
		if bytes.Equal(a, b) {
			t.Fatalf("%s: distinct seeds produced identical keystream", algorithm)
		}
	}

	if _, err := XOR(crypto.AlgAES, key, seedA[:8], plaintext); err == nil {
		t.Fatalf("expected error for short seed")
	}
}

func TestDeriveIV(t *testing.T) {
	seed := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	iv := DeriveIV(seed)
	expected := append(append([]byte(nil), seed...), 0, 0, 0, 1)
	if !bytes.Equal(iv, expected) {
		t.Fatalf("got %x, want %x", iv, expected)
	}
}

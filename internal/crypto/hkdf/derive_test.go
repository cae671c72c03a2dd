package hkdf

import (
	"bytes"
	"testing"
)

func TestDeriveKey(t *testing.T) {
	base, err := DeriveKey([]byte("secret"), []byte("salt"), "example", 32)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	tests := []struct {
		name      string
		secret    []byte
		salt      []byte
		namespace string
		keySize   int
		expectErr bool
		sameAs    bool // output must equal base
	}{
		{"deterministic", []byte("secret"), []byte("salt"), "example", 32, false, true},
		{"different salt", []byte("secret"), []byte("other_salt"), "example", 32, false, false},
		{"different secret", []byte("different_secret"), []byte("salt"), "example", 32, false, false},
		{"different namespace", []byte("secret"), []byte("salt"), "other_namespace", 32, false, false},
		{"larger key", []byte("secret"), []byte("salt"), "example", 64, false, false},
		{"zero size", []byte("secret"), []byte("salt"), "example", 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveKey(tt.secret, tt.salt, tt.namespace, tt.keySize)
			if (err != nil) != tt.expectErr {
				t.Fatalf("DeriveKey() error = %v, expectErr %v", err, tt.expectErr)
			}
			if err != nil {
				return
			}
			if len(key) != tt.keySize {
				t.Fatalf("key length %d, want %d", len(key), tt.keySize)
			}
			if bytes.Equal(key, base) != tt.sameAs {
				t.Fatalf("key equality with base = %v, want %v", !tt.sameAs, tt.sameAs)
			}
		})
	}
}

func TestDeriveSubkeys(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, 32)
	requests := []Request{
		{Label: "cipher", Size: 32},
		{Label: "integrity", Size: 32},
		{Label: "mac", Size: 20},
	}

	keys, err := DeriveSubkeys(secret, []byte("salt"), requests)
	if err != nil {
		t.Fatalf("DeriveSubkeys failed: %v", err)
	}
	if len(keys) != len(requests) {
		t.Fatalf("got %d keys, want %d", len(keys), len(requests))
	}
	for i, request := range requests {
		if len(keys[i]) != request.Size {
			t.Errorf("key %q length %d, want %d", request.Label, len(keys[i]), request.Size)
		}
	}
	if bytes.Equal(keys[0], keys[1]) {
		t.Fatalf("labels must produce independent subkeys")
	}
	if !bytes.Equal(secret, bytes.Repeat([]byte{0x42}, 32)) {
		t.Fatalf("secret was modified")
	}

	if _, err = DeriveSubkeys(nil, nil, requests); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err = DeriveSubkeys(secret, nil, []Request{{Label: "bad", Size: -1}}); err == nil {
		t.Fatalf("expected error for negative size")
	}
}

package hkdf

import (
	"crypto/sha512"
	"fmt"
	"smcp/internal/crypto"

	"golang.org/x/crypto/hkdf"
)

// One subkey to expand from the master secret
type Request struct {
	Label string // namespace, keeps subkeys independent
	Size  int    // bytes
}

// Derives a more secure key from a high entropy shared secret and salt
// Adds namespacing to the derived key
// Returned key length is of the keySize input
func DeriveKey(secret, salt []byte, namespace string, keySize int) (secureKey []byte, err error) {
	if keySize <= 0 {
		err = fmt.Errorf("invalid key size %d", keySize)
		return
	}
	info := []byte(namespace)
	deriver := hkdf.New(sha512.New, secret, salt, info)

	secureKey = make([]byte, keySize)

	_, err = deriver.Read(secureKey)
	if err != nil {
		crypto.Memzero(secureKey)
		secureKey = nil
		err = fmt.Errorf("failed to populate key with secure bytes: %w", err)
		return
	}
	return
}

// Expands one subkey per request from the same secret and salt
// Secret is left intact, caller owns its lifetime
func DeriveSubkeys(secret, salt []byte, requests []Request) (keys [][]byte, err error) {
	if len(secret) == 0 {
		err = fmt.Errorf("secret cannot be empty")
		return
	}

	keys = make([][]byte, 0, len(requests))
	for _, request := range requests {
		var key []byte
		key, err = DeriveKey(secret, salt, request.Label, request.Size)
		if err != nil {
			for _, derived := range keys {
				crypto.Memzero(derived)
			}
			keys = nil
			err = fmt.Errorf("subkey %q: %w", request.Label, err)
			return
		}
		keys = append(keys, key)
	}
	return
}

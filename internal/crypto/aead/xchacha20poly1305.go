package aead

import (
	"fmt"
	"smcp/internal/crypto"
	"smcp/internal/crypto/random"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   int = chacha20poly1305.KeySize
	NonceSize int = chacha20poly1305.NonceSizeX
)

// Encrypts provided plain text using xchacha20poly1305 AEAD cipher
// Nonce is generated when empty or insecure and returned to the caller for storage
// Zeroes key memory after encryption
func Encrypt(plaintext, key, nonce, additional []byte) (ciphertext []byte, usedNonce []byte, err error) {
	usedNonce = nonce
	err = random.PopulateEmptySlice(&usedNonce, NonceSize)
	if err != nil {
		err = fmt.Errorf("encountered error fixing insecure provided nonce: %w", err)
		return
	}
	if len(usedNonce) != NonceSize {
		err = fmt.Errorf("nonce must be %d bytes, got %d", NonceSize, len(usedNonce))
		return
	}

	aead, err := chacha20poly1305.NewX(key)
	crypto.Memzero(key)
	if err != nil {
		err = fmt.Errorf("failed creation of AEAD: %w", err)
		return
	}

	ciphertext = aead.Seal(nil, usedNonce, plaintext, additional)
	return
}

// Decrypts provided cipher text using xchacha20poly1305 AEAD cipher
// Zeroes key memory after decryption
func Decrypt(ciphertext, key, nonce, additional []byte) (plaintext []byte, err error) {
	aead, err := chacha20poly1305.NewX(key)
	crypto.Memzero(key)
	if err != nil {
		err = fmt.Errorf("failed creation of AEAD: %w", err)
		return
	}
	if len(nonce) != NonceSize {
		err = fmt.Errorf("nonce must be %d bytes, got %d", NonceSize, len(nonce))
		return
	}

	plaintext, err = aead.Open(nil, nonce, ciphertext, additional)
	if err != nil {
		err = fmt.Errorf("failed decryption of cipher text: %w", err)
		return
	}
	return
}

// Length preserving counter mode ciphers
package stream

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"smcp/internal/crypto"

	"golang.org/x/crypto/chacha20"
)

const (
	SeedSize       int    = 12
	initialCounter uint32 = 1
)

// Keystream for the given key and per-message seed
// AES counter block is seed | u32 counter, ChaCha20 takes the seed as its nonce
func New(algorithm string, key, seed []byte) (stream cipher.Stream, err error) {
	info, valid := crypto.GetCipherInfo(algorithm)
	if !valid {
		err = fmt.Errorf("unsupported symmetric algorithm %q", algorithm)
		return
	}
	if len(seed) != SeedSize {
		err = fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
		return
	}

	switch info.Name {
	case crypto.AlgAES:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err != nil {
			err = fmt.Errorf("failed creating block cipher: %w", err)
			return
		}
		stream = cipher.NewCTR(block, DeriveIV(seed))
	case crypto.AlgChaCha20:
		var chacha *chacha20.Cipher
		chacha, err = chacha20.NewUnauthenticatedCipher(key, seed)
		if err != nil {
			err = fmt.Errorf("failed creating stream cipher: %w", err)
			return
		}
		chacha.SetCounter(initialCounter)
		stream = chacha
	default:
		err = fmt.Errorf("no stream construction for %q", info.Name)
	}
	return
}

// Full 16 byte AES counter block from the 12 byte seed
func DeriveIV(seed []byte) (iv []byte) {
	iv = make([]byte, 0, aes.BlockSize)
	iv = append(iv, seed...)
	iv = binary.BigEndian.AppendUint32(iv, initialCounter)
	return
}

// Encrypts or decrypts input into a new slice of equal length
func XOR(algorithm string, key, seed, input []byte) (output []byte, err error) {
	stream, err := New(algorithm, key, seed)
	if err != nil {
		return
	}
	output = make([]byte, len(input))
	stream.XORKeyStream(output, input)
	return
}

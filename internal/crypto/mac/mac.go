// Keyed authentication over the session MAC and integrity hash
package mac

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	stdhash "hash"
	"smcp/internal/crypto"
	"smcp/internal/crypto/hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Keyed MAC instance for the named algorithm
func New(macName string, key []byte) (mac stdhash.Hash, err error) {
	info, valid := crypto.GetMACInfo(macName)
	if !valid {
		err = fmt.Errorf("unsupported MAC %q", macName)
		return
	}
	if len(key) == 0 {
		err = fmt.Errorf("MAC key cannot be empty")
		return
	}

	switch info.Name {
	case crypto.MACHmacSHA256:
		mac = hmac.New(sha256.New, key)
	case crypto.MACHmacSHA512:
		mac = hmac.New(sha512.New, key)
	case crypto.MACHmacSHA3_256:
		mac = hmac.New(func() stdhash.Hash { return sha3.New256() }, key)
	case crypto.MACBLAKE2b:
		mac, err = blake2b.New256(key)
		if err != nil {
			err = fmt.Errorf("failed keyed blake2b: %w", err)
			return
		}
	default:
		err = fmt.Errorf("no implementation for MAC %q", info.Name)
	}
	return
}

// MAC tag over the concatenation of parts
func Sum(macName string, key []byte, parts ...[]byte) (tag []byte, err error) {
	mac, err := New(macName, key)
	if err != nil {
		return
	}
	tag, err = sumParts(mac, parts)
	return
}

// Keyed integrity digest: HMAC built on the session hash
func Digest(hashName string, key []byte, parts ...[]byte) (digest []byte, err error) {
	newHash, err := hash.Constructor(hashName)
	if err != nil {
		return
	}
	if len(key) == 0 {
		err = fmt.Errorf("integrity key cannot be empty")
		return
	}
	digest, err = sumParts(hmac.New(newHash, key), parts)
	return
}

// Constant time tag comparison
func Equal(expected, received []byte) (match bool) {
	match = hmac.Equal(expected, received)
	return
}

func sumParts(h stdhash.Hash, parts [][]byte) (sum []byte, err error) {
	for _, part := range parts {
		_, err = h.Write(part)
		if err != nil {
			err = fmt.Errorf("error writing data to MAC: %w", err)
			return
		}
	}
	sum = h.Sum(nil)
	return
}

package hash

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	stdhash "hash"
	"smcp/internal/crypto"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Returns the constructor for a registered integrity hash
func Constructor(name string) (newHash func() stdhash.Hash, err error) {
	info, valid := crypto.GetHashInfo(name)
	if !valid {
		err = fmt.Errorf("unsupported hash %q", name)
		return
	}

	switch info.Name {
	case crypto.HashSHA256:
		newHash = sha256.New
	case crypto.HashSHA512:
		newHash = sha512.New
	case crypto.HashSHA3_256:
		newHash = func() stdhash.Hash { return sha3.New256() }
	case crypto.HashBLAKE2b256:
		newHash = func() stdhash.Hash {
			// Unkeyed construction cannot fail
			h, _ := blake2b.New256(nil)
			return h
		}
	default:
		err = fmt.Errorf("no constructor for hash %q", info.Name)
	}
	return
}

// Creates SHA-512 hash of multiple byte slices
// Slices are combined in their input order
func MultipleSlices(inputs ...[]byte) (sum []byte, err error) {
	hasher := sha512.New()

	for _, input := range inputs {
		_, err = hasher.Write(input)
		if err != nil {
			err = fmt.Errorf("error writing data to hash: %w", err)
			return
		}
	}

	sum = hasher.Sum(nil)
	return
}

package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Cryptographically random 32-bit value (message nonces)
func Uint32() (value uint32, err error) {
	var b [4]byte
	_, err = rand.Read(b[:])
	if err != nil {
		err = fmt.Errorf("failed to read random bytes: %w", err)
		return
	}
	value = binary.BigEndian.Uint32(b[:])
	return
}

// New slice of n random bytes
func Bytes(n int) (out []byte, err error) {
	if n < 0 {
		err = fmt.Errorf("invalid length %d", n)
		return
	}
	out = make([]byte, n)
	_, err = rand.Read(out)
	if err != nil {
		err = fmt.Errorf("failed to read random bytes: %w", err)
		return
	}
	return
}

// Fixes any insecure patterns found in slice input.
// Insecure can mean: empty, nil, all identical values.
// Modifies slice directly so all references are updated.
func PopulateEmptySlice(slice *[]byte, size int) (err error) {
	if len(*slice) == 0 {
		*slice = make([]byte, size)
	}

	if isAllIdentical(*slice) {
		_, err = rand.Read(*slice)
		if err != nil {
			err = fmt.Errorf("failed to populate slice with random data: %w", err)
			return
		}
	}
	return
}

// Checks if all bytes in the array are the same (all zero included)
func isAllIdentical(slice []byte) bool {
	if len(slice) == 0 {
		return true
	}
	first := slice[0]
	for _, b := range slice[1:] {
		if b != first {
			return false
		}
	}
	return true
}

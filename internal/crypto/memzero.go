package crypto

import "runtime"

// Overwrites slice contents with zeroes in place
func Memzero(data []byte) {
	if len(data) == 0 {
		return
	}
	clear(data)
	runtime.KeepAlive(data)
}

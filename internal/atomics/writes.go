package atomics

import "sync/atomic"

// Subtracts value from source, flooring at zero.
// Gives up after maxRetries lost CAS races.
func Subtract(source *atomic.Uint64, value uint64, maxRetries int) (success bool) {
	for range maxRetries {
		current := source.Load()
		if current == 0 {
			success = true
			return
		}

		var newValue uint64
		if value < current {
			newValue = current - value
		}

		if source.CompareAndSwap(current, newValue) {
			success = true
			return
		}
	}
	return
}

// Adds delta only if the result stays at or below limit
func AddCapped(source *atomic.Uint64, delta uint64, limit uint64) (added bool) {
	for {
		current := source.Load()
		if current+delta > limit || current+delta < current {
			return
		}
		if source.CompareAndSwap(current, current+delta) {
			added = true
			return
		}
	}
}

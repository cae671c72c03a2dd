package protocol

import (
	"errors"
	"fmt"
)

// Failure classes. Wrapped with context and matched with errors.Is.
var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrProtocolMismatch = errors.New("protocol mismatch")
	ErrAuthFailure      = errors.New("authentication failure")
	ErrDuplicateNonce   = errors.New("duplicate nonce")
	ErrStaleSequence    = errors.New("stale or replayed sequence number")
	ErrReplayCapacity   = errors.New("replay registry full")
	ErrIOFailure        = errors.New("network i/o failure")
	ErrConfiguration    = errors.New("configuration error")
)

func malformed(format string, vars ...any) (err error) {
	err = fmt.Errorf("%w: %s", ErrMalformedMessage, fmt.Sprintf(format, vars...))
	return
}

func mismatch(format string, vars ...any) (err error) {
	err = fmt.Errorf("%w: %s", ErrProtocolMismatch, fmt.Sprintf(format, vars...))
	return
}

// Short label of the failure class for metrics and logs
func Reason(err error) (reason string) {
	switch {
	case err == nil:
		reason = "accepted"
	case errors.Is(err, ErrMalformedMessage):
		reason = "malformed"
	case errors.Is(err, ErrProtocolMismatch):
		reason = "protocol_mismatch"
	case errors.Is(err, ErrAuthFailure):
		reason = "auth_failure"
	case errors.Is(err, ErrDuplicateNonce):
		reason = "duplicate_nonce"
	case errors.Is(err, ErrStaleSequence):
		reason = "stale_sequence"
	case errors.Is(err, ErrReplayCapacity):
		reason = "replay_capacity"
	case errors.Is(err, ErrIOFailure):
		reason = "io_failure"
	case errors.Is(err, ErrConfiguration):
		reason = "configuration"
	default:
		reason = "other"
	}
	return
}

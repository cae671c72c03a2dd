package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestPlainPayloadRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload PlainPayload
	}{
		{
			name:    "text body",
			payload: PlainPayload{PeerID: "alice", Sequence: 1, Nonce: 0xDEADBEEF, Body: []byte("hi"), Digest: bytes.Repeat([]byte{1}, 32)},
		},
		{
			name:    "empty body join",
			payload: PlainPayload{PeerID: "bob", Sequence: 0xFFFFFFFF, Nonce: 0, Body: []byte{}, Digest: bytes.Repeat([]byte{2}, 64)},
		},
		{
			name:    "binary body",
			payload: PlainPayload{PeerID: "carol", Sequence: 42, Nonce: 7, Body: []byte{0, 0x1F, 0x1E, 0, 0xFF}, Digest: []byte{9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := ConstructPlainPayload(tt.payload)
			if err != nil {
				t.Fatalf("ConstructPlainPayload() error = %v", err)
			}
			got, err := DeconstructPlainPayload(blob, len(tt.payload.Digest))
			if err != nil {
				t.Fatalf("DeconstructPlainPayload() error = %v", err)
			}
			if got.PeerID != tt.payload.PeerID || got.Sequence != tt.payload.Sequence || got.Nonce != tt.payload.Nonce {
				t.Errorf("fixed fields mismatch: %+v", got)
			}
			if !bytes.Equal(got.Body, tt.payload.Body) || !bytes.Equal(got.Digest, tt.payload.Digest) {
				t.Errorf("body/digest mismatch")
			}
		})
	}
}

func TestPlainPayloadRejects(t *testing.T) {
	valid, err := ConstructPlainPayload(PlainPayload{PeerID: "alice", Sequence: 1, Nonce: 2, Body: []byte("hello"), Digest: bytes.Repeat([]byte{3}, 32)})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name      string
		blob      []byte
		digestLen int
	}{
		{"too short", valid[:5], 32},
		{"digest length disagrees", valid, 16},
		{"extra byte", append(append([]byte(nil), valid...), 0), 32},
		{"truncated", valid[:len(valid)-1], 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeconstructPlainPayload(tt.blob, tt.digestLen)
			if !errors.Is(err, ErrMalformedMessage) {
				t.Fatalf("expected malformed error, got %v", err)
			}
		})
	}

	if _, err := ConstructPlainPayload(PlainPayload{PeerID: "a", Body: []byte("x")}); err == nil {
		t.Fatalf("expected error for missing digest")
	}
	if _, err := ConstructPlainPayload(PlainPayload{PeerID: "", Body: []byte("x"), Digest: []byte{1}}); err == nil {
		t.Fatalf("expected error for empty peer id")
	}
}

func TestIVSeed(t *testing.T) {
	random := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	seed, err := NewIVSeed(0x01020304, random)
	if err != nil {
		t.Fatalf("NewIVSeed() error = %v", err)
	}
	if len(seed) != IVSeedLen {
		t.Fatalf("seed length %d", len(seed))
	}

	section := append(append([]byte(nil), seed...), 0xAA, 0xBB)
	gotSeed, ciphertext, seq, err := SplitPayloadSection(section)
	if err != nil {
		t.Fatalf("SplitPayloadSection() error = %v", err)
	}
	if seq != 0x01020304 || !bytes.Equal(gotSeed, seed) || !bytes.Equal(ciphertext, []byte{0xAA, 0xBB}) {
		t.Fatalf("split mismatch seq=%x seed=%x ct=%x", seq, gotSeed, ciphertext)
	}

	if _, err := NewIVSeed(1, random[:4]); err == nil {
		t.Fatalf("expected error for short random part")
	}
	if _, _, _, err := SplitPayloadSection(seed); !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected malformed error for seed-only section, got %v", err)
	}
}

func TestDigestInputIsUnambiguous(t *testing.T) {
	a := DigestInput("alice", 1, 2, []byte("hi"))
	b := DigestInput("alice", 1, 3, []byte("hi"))
	c := DigestInput("alice", 2, 2, []byte("hi"))
	if bytes.Equal(a, b) || bytes.Equal(a, c) {
		t.Fatalf("digest input must change with nonce and sequence")
	}
	if len(a) != len("alice")+4+4+2 {
		t.Fatalf("unexpected digest input length %d", len(a))
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		err    error
		expect string
	}{
		{nil, "accepted"},
		{malformed("x"), "malformed"},
		{mismatch("y"), "protocol_mismatch"},
		{ErrAuthFailure, "auth_failure"},
		{ErrDuplicateNonce, "duplicate_nonce"},
		{ErrStaleSequence, "stale_sequence"},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		if got := Reason(tt.err); got != tt.expect {
			t.Errorf("Reason(%v) = %q want %q", tt.err, got, tt.expect)
		}
	}
}

package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Serializes the payload that gets encrypted: peerID | seq | nonce | len(body) | body | digest
func ConstructPlainPayload(payload PlainPayload) (blob []byte, err error) {
	if len(payload.Digest) == 0 {
		err = fmt.Errorf("integrity digest cannot be empty")
		return
	}
	if uint64(len(payload.Body)) > uint64(^uint32(0)) {
		err = fmt.Errorf("body length %d exceeds maximum field length", len(payload.Body))
		return
	}

	var buf bytes.Buffer
	buf.Grow(minPlainLen + len(payload.PeerID) + len(payload.Body) + len(payload.Digest))

	if err = writeVarField(&buf, "PeerID", payload.PeerID); err != nil {
		return
	}
	if err = writeUint32(&buf, "Sequence", payload.Sequence); err != nil {
		return
	}
	if err = writeUint32(&buf, "Nonce", payload.Nonce); err != nil {
		return
	}
	if err = writeUint32(&buf, "Body length", uint32(len(payload.Body))); err != nil {
		return
	}
	if _, err = buf.Write(payload.Body); err != nil {
		err = fmt.Errorf("failed to serialize Body: %v", err)
		return
	}
	if _, err = buf.Write(payload.Digest); err != nil {
		err = fmt.Errorf("failed to serialize Digest: %v", err)
		return
	}

	blob = buf.Bytes()
	return
}

// Deserializes decrypted payload. Digest length comes from the session hash algorithm.
func DeconstructPlainPayload(blob []byte, digestLen int) (payload PlainPayload, err error) {
	if len(blob) < minPlainLen+digestLen {
		err = malformed("payload length %d below minimum %d", len(blob), minPlainLen+digestLen)
		return
	}

	reader := bytes.NewReader(blob)

	payload.PeerID, err = readVarField(reader, "PeerID")
	if err != nil {
		return
	}
	payload.Sequence, err = readUint32(reader, "Sequence")
	if err != nil {
		return
	}
	payload.Nonce, err = readUint32(reader, "Nonce")
	if err != nil {
		return
	}
	bodyLen, err := readUint32(reader, "Body length")
	if err != nil {
		return
	}

	// Body and digest must account for every remaining byte
	if uint64(bodyLen)+uint64(digestLen) != uint64(reader.Len()) {
		err = malformed("body length %d and digest length %d do not match remaining %d bytes", bodyLen, digestLen, reader.Len())
		return
	}

	payload.Body = make([]byte, bodyLen)
	if _, err = io.ReadFull(reader, payload.Body); err != nil {
		err = malformed("failed to read Body: %v", err)
		return
	}
	payload.Digest = make([]byte, digestLen)
	if _, err = io.ReadFull(reader, payload.Digest); err != nil {
		err = malformed("failed to read Digest: %v", err)
		return
	}
	return
}

// Bytes covered by the integrity digest: peerID | seq | nonce | body
func DigestInput(peerID string, sequence uint32, nonce uint32, body []byte) (input []byte) {
	input = make([]byte, 0, len(peerID)+lenSequence+lenNonce+len(body))
	input = append(input, peerID...)
	input = binary.BigEndian.AppendUint32(input, sequence)
	input = binary.BigEndian.AppendUint32(input, nonce)
	input = append(input, body...)
	return
}

// Builds the clear IV seed carried in front of the ciphertext
func NewIVSeed(sequence uint32, random []byte) (seed []byte, err error) {
	if len(random) != lenIVRandom {
		err = fmt.Errorf("iv random part must be %d bytes, got %d", lenIVRandom, len(random))
		return
	}
	seed = make([]byte, 0, IVSeedLen)
	seed = binary.BigEndian.AppendUint32(seed, sequence)
	seed = append(seed, random...)
	return
}

// Splits payload section into IV seed and ciphertext
func SplitPayloadSection(section []byte) (seed []byte, ciphertext []byte, seedSequence uint32, err error) {
	if len(section) <= IVSeedLen {
		err = malformed("payload section length %d leaves no ciphertext", len(section))
		return
	}
	seed = section[:IVSeedLen]
	ciphertext = section[IVSeedLen:]
	seedSequence = binary.BigEndian.Uint32(seed[:lenSequence])
	return
}

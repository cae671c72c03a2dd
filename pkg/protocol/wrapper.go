// Wire codec for the four datagram sections: meta header, header, attributes, payload+MAC
package protocol

import (
	"bytes"
	"fmt"
)

// Serializes everything the fast-check MAC covers: MetaHeader | Header | Attributes | Payload.
// macLen is recorded in the meta header so the MAC can be appended afterwards.
func AuthenticatedBytes(header Header, attrs Attributes, payload []byte, macLen int) (blob []byte, err error) {
	if len(payload) <= IVSeedLen {
		err = fmt.Errorf("payload section too short: %d bytes", len(payload))
		return
	}
	if macLen <= 0 {
		err = fmt.Errorf("mac length must be positive, got %d", macLen)
		return
	}
	if header.SessionID != attrs.SessionID {
		err = fmt.Errorf("header session %q does not match attribute session %q", header.SessionID, attrs.SessionID)
		return
	}

	headerBlob, err := ConstructHeader(header)
	if err != nil {
		err = fmt.Errorf("failed to serialize header: %w", err)
		return
	}
	attrBlob, err := ConstructAttributes(attrs)
	if err != nil {
		err = fmt.Errorf("failed to serialize attributes: %w", err)
		return
	}

	meta := ConstructMetaHeader(MetaHeader{
		HeaderLen:     uint32(len(headerBlob)),
		AttributesLen: uint32(len(attrBlob)),
		PayloadLen:    uint32(len(payload)),
		MACLen:        uint32(macLen),
	})

	var buf bytes.Buffer
	buf.Grow(len(meta) + len(headerBlob) + len(attrBlob) + len(payload) + macLen)
	buf.Write(meta)
	buf.Write(headerBlob)
	buf.Write(attrBlob)
	buf.Write(payload)

	blob = buf.Bytes()
	return
}

// Main Entry Point (send): builds the full datagram from its sections
func Encode(header Header, attrs Attributes, payload []byte, mac []byte) (datagram []byte, err error) {
	authenticated, err := AuthenticatedBytes(header, attrs, payload, len(mac))
	if err != nil {
		return
	}
	datagram = append(authenticated, mac...)
	return
}

// Main Entry Point (receive): slices a datagram into its sections using the meta header
func Decode(blob []byte) (datagram Datagram, err error) {
	meta, err := DeconstructMetaHeader(blob)
	if err != nil {
		return
	}

	index := MetaHeaderLen
	headerEnd := index + int(meta.HeaderLen)
	attrEnd := headerEnd + int(meta.AttributesLen)
	payloadEnd := attrEnd + int(meta.PayloadLen)
	macEnd := payloadEnd + int(meta.MACLen)

	header, err := DeconstructHeader(blob[index:headerEnd])
	if err != nil {
		return
	}
	attrs, err := DeconstructAttributes(blob[headerEnd:attrEnd])
	if err != nil {
		return
	}
	if attrs.SessionID != header.SessionID {
		err = malformed("attribute session %q differs from header session %q", attrs.SessionID, header.SessionID)
		return
	}
	if int(meta.PayloadLen) <= IVSeedLen {
		err = malformed("payload section length %d leaves no ciphertext", meta.PayloadLen)
		return
	}

	datagram = Datagram{
		Meta:          meta,
		Header:        header,
		Attributes:    attrs,
		Payload:       blob[attrEnd:payloadEnd],
		MAC:           blob[payloadEnd:macEnd],
		Authenticated: blob[:payloadEnd],
	}
	return
}

// Rejects datagrams not meant for this session or built with another ciphersuite
func (datagram Datagram) CheckSession(local Attributes) (err error) {
	if datagram.Header.SessionID != local.SessionID {
		err = mismatch("session %q, expected %q", datagram.Header.SessionID, local.SessionID)
		return
	}
	err = datagram.Attributes.Match(local)
	return
}

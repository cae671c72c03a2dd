package protocol

import (
	"bytes"
	"fmt"
)

// Serializes header section
func ConstructHeader(header Header) (blob []byte, err error) {
	if !header.Type.valid() {
		err = fmt.Errorf("unknown message type %d", header.Type)
		return
	}

	var buf bytes.Buffer
	if err = buf.WriteByte(header.Version); err != nil {
		err = fmt.Errorf("failed to serialize Version: %v", err)
		return
	}
	if err = writeVarField(&buf, "SessionID", header.SessionID); err != nil {
		return
	}
	if err = buf.WriteByte(uint8(header.Type)); err != nil {
		err = fmt.Errorf("failed to serialize MessageType: %v", err)
		return
	}

	blob = buf.Bytes()
	return
}

// Deserializes header section (version is checked, session is left to the caller)
func DeconstructHeader(blob []byte) (header Header, err error) {
	if len(blob) < minHeaderLen {
		err = malformed("header length %d below minimum %d", len(blob), minHeaderLen)
		return
	}

	reader := bytes.NewReader(blob)

	header.Version, _ = reader.ReadByte()
	if header.Version != ProtocolVersion {
		err = mismatch("protocol version %d, expected %d", header.Version, ProtocolVersion)
		return
	}

	header.SessionID, err = readVarField(reader, "SessionID")
	if err != nil {
		return
	}

	msgType, err := reader.ReadByte()
	if err != nil {
		err = malformed("missing message type")
		return
	}
	header.Type = MessageType(msgType)
	if !header.Type.valid() {
		err = malformed("unknown message type %d", msgType)
		return
	}

	if reader.Len() != 0 {
		err = malformed("%d unexpected bytes after header fields", reader.Len())
		return
	}
	return
}

package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Writes length prefix, value and terminator
func writeVarField(buf *bytes.Buffer, name string, value string) (err error) {
	if len(value) < minVarFieldLen || len(value) > maxVarFieldLen {
		err = fmt.Errorf("field %s length %d outside allowed range %d-%d", name, len(value), minVarFieldLen, maxVarFieldLen)
		return
	}
	if err = buf.WriteByte(uint8(len(value))); err != nil {
		err = fmt.Errorf("failed to serialize %s length: %v", name, err)
		return
	}
	if _, err = buf.WriteString(value); err != nil {
		err = fmt.Errorf("failed to serialize %s: %v", name, err)
		return
	}
	if err = buf.WriteByte(terminatorByte); err != nil {
		err = fmt.Errorf("failed to serialize %s terminator: %v", name, err)
		return
	}
	return
}

// Reads length prefixed, terminated value. Any inconsistency is a malformed message.
func readVarField(reader *bytes.Reader, name string) (value string, err error) {
	length, err := reader.ReadByte()
	if err != nil {
		err = malformed("missing %s length", name)
		return
	}
	if int(length) < minVarFieldLen {
		err = malformed("%s cannot be empty", name)
		return
	}
	if int(length) > reader.Len() {
		err = malformed("%s length %d exceeds remaining %d bytes", name, length, reader.Len())
		return
	}

	raw := make([]byte, length)
	if _, err = io.ReadFull(reader, raw); err != nil {
		err = malformed("failed to read %s: %v", name, err)
		return
	}

	term, err := reader.ReadByte()
	if err != nil {
		err = malformed("missing %s terminator", name)
		return
	}
	if term != terminatorByte {
		err = malformed("expected null %s terminator, got 0x%02X", name, term)
		return
	}

	value = string(raw)
	return
}

// Write four bytes to provided buffer (big endian)
func writeUint32(buf *bytes.Buffer, name string, value uint32) (err error) {
	err = binary.Write(buf, binary.BigEndian, value)
	if err != nil {
		err = fmt.Errorf("failed to serialize %s: %v", name, err)
		return
	}
	return
}

func readUint32(reader *bytes.Reader, name string) (value uint32, err error) {
	if err = binary.Read(reader, binary.BigEndian, &value); err != nil {
		err = malformed("failed to deserialize %s: %v", name, err)
		return
	}
	return
}

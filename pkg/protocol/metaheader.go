package protocol

import (
	"bytes"
	"encoding/binary"
)

// Serializes the fixed size framing prefix
func ConstructMetaHeader(meta MetaHeader) (blob []byte) {
	var buf bytes.Buffer
	buf.Grow(MetaHeaderLen)

	buf.WriteByte(metaStartA)
	buf.WriteByte(metaStartB)
	binary.Write(&buf, binary.BigEndian, meta.HeaderLen)
	buf.WriteByte(metaSeparator)
	binary.Write(&buf, binary.BigEndian, meta.AttributesLen)
	buf.WriteByte(metaSeparator)
	binary.Write(&buf, binary.BigEndian, meta.PayloadLen)
	buf.WriteByte(metaSeparator)
	binary.Write(&buf, binary.BigEndian, meta.MACLen)
	buf.WriteByte(metaEndByte)
	buf.WriteByte(metaEndByte)

	blob = buf.Bytes()
	return
}

// Parses framing prefix and validates declared lengths against the datagram size
func DeconstructMetaHeader(blob []byte) (meta MetaHeader, err error) {
	if len(blob) < MetaHeaderLen {
		err = malformed("datagram length %d below meta header length %d", len(blob), MetaHeaderLen)
		return
	}

	if blob[0] != metaStartA || blob[1] != metaStartB {
		err = malformed("bad meta header magic 0x%02X%02X", blob[0], blob[1])
		return
	}

	index := lenMetaStart
	lengths := make([]uint32, 4)
	for i := range lengths {
		lengths[i] = binary.BigEndian.Uint32(blob[index : index+lenSectionLen])
		index += lenSectionLen

		// Last length is followed by the end marker instead of a separator
		if i < len(lengths)-1 {
			if blob[index] != metaSeparator {
				err = malformed("bad meta header separator 0x%02X at offset %d", blob[index], index)
				return
			}
			index += lenMetaSeparator
		}
	}

	if blob[index] != metaEndByte || blob[index+1] != metaEndByte {
		err = malformed("bad meta header end marker")
		return
	}

	meta = MetaHeader{
		HeaderLen:     lengths[0],
		AttributesLen: lengths[1],
		PayloadLen:    lengths[2],
		MACLen:        lengths[3],
	}

	// Every section is mandatory
	for i, sectionLen := range lengths {
		if sectionLen == 0 {
			err = malformed("meta header declares empty section %d", i)
			return
		}
	}

	// Sum in 64 bits so hostile lengths cannot wrap
	remaining := uint64(len(blob) - MetaHeaderLen)
	declared := uint64(meta.HeaderLen) + uint64(meta.AttributesLen) + uint64(meta.PayloadLen) + uint64(meta.MACLen)
	if declared > remaining {
		err = malformed("declared section lengths %d exceed remaining %d bytes", declared, remaining)
		return
	}
	if declared < remaining {
		err = malformed("%d trailing bytes after MAC", remaining-declared)
		return
	}
	return
}

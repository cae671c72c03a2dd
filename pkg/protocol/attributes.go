package protocol

import "bytes"

// Serializes attribute section
func ConstructAttributes(attrs Attributes) (blob []byte, err error) {
	var buf bytes.Buffer
	for i, value := range attrs.fields() {
		err = writeVarField(&buf, attributeNames[i], value)
		if err != nil {
			return
		}
	}
	blob = buf.Bytes()
	return
}

// Deserializes attribute section
func DeconstructAttributes(blob []byte) (attrs Attributes, err error) {
	if len(blob) < minAttributeLen {
		err = malformed("attributes length %d below minimum %d", len(blob), minAttributeLen)
		return
	}

	reader := bytes.NewReader(blob)

	var values [attributeFieldCount]string
	for i := range values {
		values[i], err = readVarField(reader, attributeNames[i])
		if err != nil {
			return
		}
	}
	if reader.Len() != 0 {
		err = malformed("%d unexpected bytes after attribute fields", reader.Len())
		return
	}

	attrs = Attributes{
		SessionID:          values[0],
		SessionName:        values[1],
		SymmetricAlgorithm: values[2],
		Mode:               values[3],
		Padding:            values[4],
		HashAlgorithm:      values[5],
		MACAlgorithm:       values[6],
	}
	return
}

// Compares received ciphersuite identifiers with the local ones
func (attrs Attributes) Match(local Attributes) (err error) {
	received := attrs.fields()
	expected := local.fields()
	for i := range received {
		if received[i] != expected[i] {
			err = mismatch("attribute %s is %q, expected %q", attributeNames[i], received[i], expected[i])
			return
		}
	}
	return
}

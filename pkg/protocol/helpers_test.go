package protocol

import "bytes"

func testHeader(msgType MessageType) Header {
	return Header{Version: ProtocolVersion, SessionID: "lobby-224.1.2.3:5000", Type: msgType}
}

func testAttributes() Attributes {
	return Attributes{
		SessionID:          "lobby-224.1.2.3:5000",
		SessionName:        "Lobby",
		SymmetricAlgorithm: "AES",
		Mode:               "CTR",
		Padding:            "NoPadding",
		HashAlgorithm:      "SHA-256",
		MACAlgorithm:       "HmacSHA256",
	}
}

func testPayloadSection(cipherLen int) []byte {
	seed, _ := NewIVSeed(9, bytes.Repeat([]byte{0xAB}, lenIVRandom))
	return append(seed, bytes.Repeat([]byte{0xCD}, cipherLen)...)
}

package protocol

// JOIN, LEAVE or TEXT
type MessageType uint8

// Identifies which session (and so which ciphersuite) a datagram belongs to
type Header struct {
	Version   uint8
	SessionID string
	Type      MessageType
}

// Ciphersuite identifiers echoed by the sender
type Attributes struct {
	SessionID          string
	SessionName        string
	SymmetricAlgorithm string
	Mode               string
	Padding            string
	HashAlgorithm      string
	MACAlgorithm       string
}

// Section lengths from the fixed framing prefix
type MetaHeader struct {
	HeaderLen     uint32
	AttributesLen uint32
	PayloadLen    uint32
	MACLen        uint32
}

// Decoded datagram with its sections still in wire form where crypto needs them
type Datagram struct {
	Meta          MetaHeader
	Header        Header
	Attributes    Attributes
	Payload       []byte // IV seed + ciphertext
	MAC           []byte
	Authenticated []byte // MetaHeader|Header|Attributes|Payload, what the MAC covers
}

// Payload before encryption (and after decryption)
type PlainPayload struct {
	PeerID   string
	Sequence uint32
	Nonce    uint32
	Body     []byte
	Digest   []byte
}

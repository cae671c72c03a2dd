package session

import "smcp/internal/crypto"

// Ciphersuite and identity for one multicast endpoint. Immutable once returned.
type Parameters struct {
	Endpoint           string
	ID                 string
	Name               string
	SymmetricAlgorithm string
	KeySize            int // bits
	Mode               string
	Padding            string
	IntegrityHash      string
	MAC                string
	MACKeySize         int    // bits
	KeyAlias           string // keystore entry holding the master key
	Suite              crypto.Suite
}

// Resolves session parameters by endpoint
type Provider interface {
	Lookup(endpoint string) (params Parameters, err error)
}

// TOML document
type fileFormat struct {
	Sessions []sessionEntry `toml:"session"`
}

type sessionEntry struct {
	Endpoint           string `toml:"endpoint"`
	ID                 string `toml:"id"`
	Name               string `toml:"name"`
	SymmetricAlgorithm string `toml:"symmetricAlgorithm"`
	KeySize            int    `toml:"keySize"`
	Mode               string `toml:"mode"`
	Padding            string `toml:"padding"`
	IntegrityHash      string `toml:"integrityHash"`
	MAC                string `toml:"mac"`
	MACKeySize         int    `toml:"macKeySize"`
	KeyAlias           string `toml:"keyAlias,omitempty"`
}

// In-memory provider backed by a parsed session file
type FileProvider struct {
	Path       string
	byEndpoint map[string]Parameters
	endpoints  []string
}

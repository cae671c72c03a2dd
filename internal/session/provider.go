// Session parameter file: maps multicast endpoints to session identity and ciphersuite
package session

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"smcp/internal/crypto"
	"smcp/pkg/protocol"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Reads and validates a session parameters file
func LoadFile(path string) (provider *FileProvider, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("%w: failed to read session file: %w", protocol.ErrConfiguration, err)
		return
	}

	provider, err = Parse(data)
	if err != nil {
		err = fmt.Errorf("invalid session file '%s': %w", path, err)
		return
	}
	provider.Path = path
	return
}

// Parses TOML session definitions, rejecting duplicates and invalid suites
func Parse(data []byte) (provider *FileProvider, err error) {
	var doc fileFormat
	metadata, err := toml.Decode(string(data), &doc)
	if err != nil {
		err = fmt.Errorf("%w: %w", protocol.ErrConfiguration, err)
		return
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		err = fmt.Errorf("%w: unknown keys %v", protocol.ErrConfiguration, undecoded)
		return
	}
	if len(doc.Sessions) == 0 {
		err = fmt.Errorf("%w: no [[session]] entries defined", protocol.ErrConfiguration)
		return
	}

	provider = &FileProvider{byEndpoint: make(map[string]Parameters)}
	seenIDs := make(map[string]string)

	for i, entry := range doc.Sessions {
		params := Parameters{
			Endpoint:           entry.Endpoint,
			ID:                 entry.ID,
			Name:               entry.Name,
			SymmetricAlgorithm: entry.SymmetricAlgorithm,
			KeySize:            entry.KeySize,
			Mode:               entry.Mode,
			Padding:            entry.Padding,
			IntegrityHash:      entry.IntegrityHash,
			MAC:                entry.MAC,
			MACKeySize:         entry.MACKeySize,
			KeyAlias:           entry.KeyAlias,
		}

		err = params.Validate()
		if err != nil {
			err = fmt.Errorf("session %d: %w", i+1, err)
			provider = nil
			return
		}
		params = params.Canonical()

		if _, exists := provider.byEndpoint[params.Endpoint]; exists {
			err = fmt.Errorf("%w: duplicate endpoint %s", protocol.ErrConfiguration, params.Endpoint)
			provider = nil
			return
		}
		if other, exists := seenIDs[params.ID]; exists {
			err = fmt.Errorf("%w: session id %q used by both %s and %s", protocol.ErrConfiguration, params.ID, other, params.Endpoint)
			provider = nil
			return
		}
		seenIDs[params.ID] = params.Endpoint
		provider.byEndpoint[params.Endpoint] = params
		provider.endpoints = append(provider.endpoints, params.Endpoint)
	}
	sort.Strings(provider.endpoints)
	return
}

// Parameters for endpoint ("ip:port"), normalized before lookup
func (provider *FileProvider) Lookup(endpoint string) (params Parameters, err error) {
	normalized, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return
	}
	params, ok := provider.byEndpoint[normalized]
	if !ok {
		err = fmt.Errorf("%w: no session configured for %s", protocol.ErrConfiguration, normalized)
		return
	}
	return
}

// All configured endpoints in sorted order
func (provider *FileProvider) Endpoints() (endpoints []string) {
	endpoints = append([]string(nil), provider.endpoints...)
	return
}

// Checks identity fields, endpoint form and the full ciphersuite
func (params Parameters) Validate() (err error) {
	if _, err = NormalizeEndpoint(params.Endpoint); err != nil {
		return
	}
	if err = checkField("id", params.ID); err != nil {
		return
	}
	if err = checkField("name", params.Name); err != nil {
		return
	}
	if params.KeyAlias != "" && strings.TrimSpace(params.KeyAlias) != params.KeyAlias {
		err = fmt.Errorf("%w: keyAlias has surrounding whitespace", protocol.ErrConfiguration)
		return
	}

	_, err = crypto.NewSuite(params.SymmetricAlgorithm, params.KeySize, params.Mode, params.Padding,
		params.IntegrityHash, params.MAC, params.MACKeySize)
	if err != nil {
		err = fmt.Errorf("%w: %w", protocol.ErrConfiguration, err)
		return
	}
	return
}

// Copy with canonical algorithm names, resolved suite, normalized endpoint and defaulted key alias.
// Must only be called on validated parameters.
func (params Parameters) Canonical() (canonical Parameters) {
	canonical = params
	suite, err := crypto.NewSuite(params.SymmetricAlgorithm, params.KeySize, params.Mode, params.Padding,
		params.IntegrityHash, params.MAC, params.MACKeySize)
	if err != nil {
		return
	}
	canonical.Suite = suite
	canonical.SymmetricAlgorithm = suite.Cipher.Name
	canonical.Mode = suite.Mode
	canonical.Padding = suite.Padding
	canonical.IntegrityHash = suite.Hash.Name
	canonical.MAC = suite.MAC.Name
	if endpoint, err := NormalizeEndpoint(params.Endpoint); err == nil {
		canonical.Endpoint = endpoint
	}
	if canonical.KeyAlias == "" {
		canonical.KeyAlias = canonical.ID
	}
	return
}

// Attribute section values carried on the wire for this session
func (params Parameters) Attributes() (attrs protocol.Attributes) {
	attrs = protocol.Attributes{
		SessionID:          params.ID,
		SessionName:        params.Name,
		SymmetricAlgorithm: params.SymmetricAlgorithm,
		Mode:               params.Mode,
		Padding:            params.Padding,
		HashAlgorithm:      params.IntegrityHash,
		MACAlgorithm:       params.MAC,
	}
	return
}

// Endpoint in "ip:port" form with a multicast group address
func NormalizeEndpoint(endpoint string) (normalized string, err error) {
	host, portText, err := net.SplitHostPort(strings.TrimSpace(endpoint))
	if err != nil {
		err = fmt.Errorf("%w: invalid endpoint %q: %w", protocol.ErrConfiguration, endpoint, err)
		return
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsMulticast() {
		err = fmt.Errorf("%w: endpoint %q is not a multicast address", protocol.ErrConfiguration, endpoint)
		return
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		err = fmt.Errorf("%w: endpoint %q has invalid port", protocol.ErrConfiguration, endpoint)
		return
	}
	normalized = net.JoinHostPort(ip.String(), strconv.Itoa(port))
	return
}

// Wire variable fields hold 1..255 bytes
func checkField(name, value string) (err error) {
	if value == "" {
		err = fmt.Errorf("%w: %s cannot be empty", protocol.ErrConfiguration, name)
		return
	}
	if len(value) > 255 {
		err = fmt.Errorf("%w: %s longer than 255 bytes", protocol.ErrConfiguration, name)
		return
	}
	return
}

// Example file for configure --session-template
func Template() (data []byte, err error) {
	doc := fileFormat{Sessions: []sessionEntry{
		{
			Endpoint:           "239.10.10.10:5000",
			ID:                 "lobby",
			Name:               "Lobby",
			SymmetricAlgorithm: crypto.AlgAES,
			KeySize:            256,
			Mode:               crypto.ModeCTR,
			Padding:            crypto.PaddingNone,
			IntegrityHash:      crypto.HashSHA256,
			MAC:                crypto.MACHmacSHA256,
			MACKeySize:         256,
			KeyAlias:           "lobby",
		},
		{
			Endpoint:           "[ff15::7]:5001",
			ID:                 "ops",
			Name:               "Operations",
			SymmetricAlgorithm: crypto.AlgChaCha20,
			KeySize:            256,
			Mode:               crypto.ModeCTR,
			Padding:            crypto.PaddingNone,
			IntegrityHash:      crypto.HashBLAKE2b256,
			MAC:                crypto.MACBLAKE2b,
			MACKeySize:         512,
		},
	}}

	var buf bytes.Buffer
	err = toml.NewEncoder(&buf).Encode(doc)
	if err != nil {
		err = fmt.Errorf("failed encoding session template: %w", err)
		return
	}
	data = buf.Bytes()
	return
}

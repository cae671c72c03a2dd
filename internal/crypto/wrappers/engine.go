// Per-session cipher engine: payload encryption, integrity digest and datagram MAC
package wrappers

import (
	"fmt"
	"smcp/internal/crypto"
	"smcp/internal/crypto/hash"
	"smcp/internal/crypto/hkdf"
	"smcp/internal/crypto/mac"
	"smcp/internal/crypto/random"
	"smcp/internal/crypto/stream"
	"smcp/pkg/protocol"
	"sync"
)

const (
	labelCipher    string = "smcp cipher"
	labelIntegrity string = "smcp integrity"
	labelMAC       string = "smcp mac"

	ivRandomLen int = 8
)

// Holds derived subkeys for one session. Safe for concurrent use.
type Engine struct {
	suite        crypto.Suite
	mutex        sync.RWMutex
	cipherKey    []byte
	integrityKey []byte
	macKey       []byte
	closed       bool
}

// Derives the session subkeys from the master key.
// Salt binds the keys to the session identifier.
func NewEngine(suite crypto.Suite, sessionID string, masterKey []byte) (engine *Engine, err error) {
	if len(masterKey) == 0 {
		err = fmt.Errorf("%w: master key cannot be empty", protocol.ErrConfiguration)
		return
	}
	if sessionID == "" {
		err = fmt.Errorf("%w: session identifier cannot be empty", protocol.ErrConfiguration)
		return
	}

	salt, err := hash.MultipleSlices([]byte(sessionID))
	if err != nil {
		err = fmt.Errorf("failed creating salt: %w", err)
		return
	}

	keys, err := hkdf.DeriveSubkeys(masterKey, salt, []hkdf.Request{
		{Label: labelCipher, Size: suite.KeyBytes()},
		{Label: labelIntegrity, Size: suite.Hash.Size},
		{Label: labelMAC, Size: suite.MACKeyBytes()},
	})
	if err != nil {
		err = fmt.Errorf("%w: failed deriving session keys: %w", protocol.ErrConfiguration, err)
		return
	}

	engine = &Engine{
		suite:        suite,
		cipherKey:    keys[0],
		integrityKey: keys[1],
		macKey:       keys[2],
	}
	return
}

func (engine *Engine) Suite() (suite crypto.Suite) {
	suite = engine.suite
	return
}

func (engine *Engine) MACSize() (size int) {
	size = engine.suite.MAC.Size
	return
}

func (engine *Engine) DigestSize() (size int) {
	size = engine.suite.Hash.Size
	return
}

// Builds the payload section: clear IV seed followed by the encrypted plain payload
func (engine *Engine) Seal(peerID string, sequence uint32, nonce uint32, body []byte) (section []byte, err error) {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	if engine.closed {
		err = fmt.Errorf("cipher engine closed")
		return
	}

	digest, err := mac.Digest(engine.suite.Hash.Name, engine.integrityKey, protocol.DigestInput(peerID, sequence, nonce, body))
	if err != nil {
		err = fmt.Errorf("failed computing integrity digest: %w", err)
		return
	}

	plain, err := protocol.ConstructPlainPayload(protocol.PlainPayload{
		PeerID:   peerID,
		Sequence: sequence,
		Nonce:    nonce,
		Body:     body,
		Digest:   digest,
	})
	if err != nil {
		return
	}
	defer crypto.Memzero(plain)

	ivRandom, err := random.Bytes(ivRandomLen)
	if err != nil {
		return
	}
	seed, err := protocol.NewIVSeed(sequence, ivRandom)
	if err != nil {
		return
	}

	ciphertext, err := stream.XOR(engine.suite.Cipher.Name, engine.cipherKey, seed, plain)
	if err != nil {
		err = fmt.Errorf("failed encryption: %w", err)
		return
	}

	section = make([]byte, 0, len(seed)+len(ciphertext))
	section = append(section, seed...)
	section = append(section, ciphertext...)
	return
}

// Decrypts a payload section and checks its integrity digest.
// Every failure past framing reports as an authentication failure.
func (engine *Engine) Open(section []byte) (payload protocol.PlainPayload, err error) {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	if engine.closed {
		err = fmt.Errorf("cipher engine closed")
		return
	}

	seed, ciphertext, seedSequence, err := protocol.SplitPayloadSection(section)
	if err != nil {
		return
	}

	plain, err := stream.XOR(engine.suite.Cipher.Name, engine.cipherKey, seed, ciphertext)
	if err != nil {
		err = fmt.Errorf("%w: %w", protocol.ErrAuthFailure, err)
		return
	}
	defer crypto.Memzero(plain)

	payload, err = protocol.DeconstructPlainPayload(plain, engine.suite.Hash.Size)
	if err != nil {
		err = fmt.Errorf("%w: decrypted payload unreadable: %w", protocol.ErrAuthFailure, err)
		return
	}

	if payload.Sequence != seedSequence {
		err = fmt.Errorf("%w: sequence %d does not match iv seed %d", protocol.ErrAuthFailure, payload.Sequence, seedSequence)
		payload = protocol.PlainPayload{}
		return
	}

	expected, err := mac.Digest(engine.suite.Hash.Name, engine.integrityKey,
		protocol.DigestInput(payload.PeerID, payload.Sequence, payload.Nonce, payload.Body))
	if err != nil {
		err = fmt.Errorf("%w: %w", protocol.ErrAuthFailure, err)
		payload = protocol.PlainPayload{}
		return
	}
	if !mac.Equal(expected, payload.Digest) {
		err = fmt.Errorf("%w: integrity digest mismatch", protocol.ErrAuthFailure)
		payload = protocol.PlainPayload{}
		return
	}
	return
}

// MAC over the authenticated datagram prefix
func (engine *Engine) Tag(authenticated []byte) (tag []byte, err error) {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	if engine.closed {
		err = fmt.Errorf("cipher engine closed")
		return
	}

	tag, err = mac.Sum(engine.suite.MAC.Name, engine.macKey, authenticated)
	return
}

// Recomputes the MAC and compares in constant time
func (engine *Engine) Verify(authenticated []byte, received []byte) (err error) {
	expected, err := engine.Tag(authenticated)
	if err != nil {
		err = fmt.Errorf("%w: %w", protocol.ErrAuthFailure, err)
		return
	}
	if !mac.Equal(expected, received) {
		err = fmt.Errorf("%w: message authentication code mismatch", protocol.ErrAuthFailure)
		return
	}
	return
}

// Zeroes all subkeys, engine is unusable afterwards
func (engine *Engine) Close() {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	if engine.closed {
		return
	}
	crypto.Memzero(engine.cipherKey)
	crypto.Memzero(engine.integrityKey)
	crypto.Memzero(engine.macKey)
	engine.closed = true
}

// Password protected keystore holding master keys by alias
package keystore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"smcp/internal/crypto"
	"smcp/internal/crypto/aead"
	"smcp/internal/crypto/random"
	"smcp/pkg/protocol"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/argon2"
)

var defaultParams = KDFParams{Time: 3, Memory: 64 * 1024, Threads: 4}

// Creates an empty keystore file. Fails if path exists.
func Create(path string, password []byte) (store *Store, err error) {
	if len(password) == 0 {
		err = fmt.Errorf("%w: keystore password cannot be empty", protocol.ErrConfiguration)
		return
	}
	_, err = os.Stat(path)
	if err == nil {
		err = fmt.Errorf("%w: keystore %s already exists", protocol.ErrConfiguration, path)
		return
	}

	store = &Store{
		path:     path,
		password: bytes.Clone(password),
		params:   defaultParams,
		keys:     make(map[string][]byte),
	}
	err = store.Save()
	if err != nil {
		store.Close()
		store = nil
		return
	}
	return
}

// Decrypts the keystore file with password
func Open(path string, password []byte) (store *Store, err error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("%w: failed to read keystore: %w", protocol.ErrConfiguration, err)
		return
	}
	if len(blob) < minFileLen || string(blob[:len(fileMagic)]) != fileMagic {
		err = fmt.Errorf("%w: %s is not a keystore file", protocol.ErrConfiguration, path)
		return
	}

	header := blob[:headerLen]
	salt := header[len(fileMagic) : len(fileMagic)+saltLen]
	params := KDFParams{
		Time:    binary.BigEndian.Uint32(header[len(fileMagic)+saltLen:]),
		Memory:  binary.BigEndian.Uint32(header[len(fileMagic)+saltLen+4:]),
		Threads: header[headerLen-1],
	}
	if params.Time == 0 || params.Memory == 0 || params.Threads == 0 {
		err = fmt.Errorf("%w: invalid key derivation parameters", protocol.ErrConfiguration)
		return
	}
	nonce := blob[headerLen : headerLen+aead.NonceSize]
	ciphertext := blob[headerLen+aead.NonceSize:]

	fileKey := deriveFileKey(password, salt, params)
	plaintext, err := aead.Decrypt(ciphertext, fileKey, nonce, header)
	if err != nil {
		err = ErrBadPassword
		return
	}
	defer crypto.Memzero(plaintext)

	var keys map[string][]byte
	err = cbor.Unmarshal(plaintext, &keys)
	if err != nil {
		err = fmt.Errorf("%w: keystore contents unreadable: %w", protocol.ErrConfiguration, err)
		return
	}
	if keys == nil {
		keys = make(map[string][]byte)
	}

	store = &Store{
		path:     path,
		password: bytes.Clone(password),
		params:   params,
		keys:     keys,
	}
	return
}

// Copy of the key stored under alias
func (store *Store) Key(alias string) (key []byte, err error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	stored, ok := store.keys[alias]
	if !ok {
		err = fmt.Errorf("%w %q", ErrUnknownAlias, alias)
		return
	}
	key = bytes.Clone(stored)
	return
}

// Stores a copy of key under alias, replacing any previous key
func (store *Store) Set(alias string, key []byte) (err error) {
	if alias == "" || len(alias) > maxAliasLen {
		err = fmt.Errorf("%w: alias must be 1..%d bytes", protocol.ErrConfiguration, maxAliasLen)
		return
	}
	if len(key)*8 < minKeyBits || len(key)*8 > maxKeyBits {
		err = fmt.Errorf("%w: key must be %d..%d bits, got %d", protocol.ErrConfiguration, minKeyBits, maxKeyBits, len(key)*8)
		return
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()
	if old, ok := store.keys[alias]; ok {
		crypto.Memzero(old)
	}
	store.keys[alias] = bytes.Clone(key)
	return
}

// Creates and stores a random key of bits length
func (store *Store) Generate(alias string, bits int) (err error) {
	if bits%8 != 0 {
		err = fmt.Errorf("%w: key size %d is not a whole number of bytes", protocol.ErrConfiguration, bits)
		return
	}
	if bits < minKeyBits || bits > maxKeyBits {
		err = fmt.Errorf("%w: key must be %d..%d bits, got %d", protocol.ErrConfiguration, minKeyBits, maxKeyBits, bits)
		return
	}
	key, err := random.Bytes(bits / 8)
	if err != nil {
		return
	}
	defer crypto.Memzero(key)
	err = store.Set(alias, key)
	return
}

// Sorted alias list
func (store *Store) Aliases() (aliases []string) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	for alias := range store.keys {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return
}

// Re-encrypts with a fresh salt and nonce and atomically replaces the file
func (store *Store) Save() (err error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if store.keys == nil {
		err = fmt.Errorf("keystore closed")
		return
	}

	plaintext, err := cbor.Marshal(store.keys)
	if err != nil {
		err = fmt.Errorf("failed encoding keystore: %w", err)
		return
	}
	defer crypto.Memzero(plaintext)

	salt, err := random.Bytes(saltLen)
	if err != nil {
		return
	}

	header := make([]byte, 0, headerLen)
	header = append(header, fileMagic...)
	header = append(header, salt...)
	header = binary.BigEndian.AppendUint32(header, store.params.Time)
	header = binary.BigEndian.AppendUint32(header, store.params.Memory)
	header = append(header, store.params.Threads)

	fileKey := deriveFileKey(store.password, salt, store.params)
	ciphertext, nonce, err := aead.Encrypt(plaintext, fileKey, nil, header)
	if err != nil {
		err = fmt.Errorf("failed sealing keystore: %w", err)
		return
	}

	blob := make([]byte, 0, len(header)+len(nonce)+len(ciphertext))
	blob = append(blob, header...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	err = writeAtomic(store.path, blob)
	return
}

// Zeroes password and key material
func (store *Store) Close() {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	crypto.Memzero(store.password)
	for alias, key := range store.keys {
		crypto.Memzero(key)
		delete(store.keys, alias)
	}
	store.keys = nil
}

func deriveFileKey(password, salt []byte, params KDFParams) (key []byte) {
	key = argon2.IDKey(password, salt, params.Time, params.Memory, params.Threads, uint32(aead.KeySize))
	return
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0700)
	if err != nil {
		err = fmt.Errorf("failed creating keystore directory: %w", err)
		return
	}

	tmp, err := os.CreateTemp(dir, ".keystore-*")
	if err != nil {
		err = fmt.Errorf("failed creating temporary keystore: %w", err)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(filePerms)
	}
	if err == nil {
		err = tmp.Sync()
	}
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		err = fmt.Errorf("failed writing keystore: %w", err)
		return
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		err = fmt.Errorf("failed replacing keystore: %w", err)
		return
	}
	return
}

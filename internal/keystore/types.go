package keystore

import (
	"fmt"
	"os"
	"smcp/pkg/protocol"
	"sync"
)

const (
	fileMagic   string      = "SMCPKS1"
	saltLen     int         = 16
	minKeyBits  int         = 128
	maxKeyBits  int         = 512
	maxAliasLen int         = 255
	filePerms   os.FileMode = 0600
	headerLen   int         = len(fileMagic) + saltLen + 4 + 4 + 1
	minFileLen  int         = headerLen + 24 + 16 // nonce and AEAD tag
)

var ErrBadPassword = fmt.Errorf("%w: wrong keystore password or corrupted keystore", protocol.ErrConfiguration)
var ErrUnknownAlias = fmt.Errorf("%w: no key stored under alias", protocol.ErrConfiguration)

// Argon2id cost parameters stored in the file header
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// Unlocked keystore. Safe for concurrent use.
type Store struct {
	path     string
	password []byte
	params   KDFParams
	mutex    sync.Mutex
	keys     map[string][]byte
}

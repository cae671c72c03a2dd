// Registry of the algorithm names a session may choose and their sizes
package crypto

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

const (
	AlgAES      string = "AES"
	AlgChaCha20 string = "CHACHA20"

	ModeCTR     string = "CTR"
	PaddingNone string = "NoPadding"

	HashSHA256     string = "SHA-256"
	HashSHA512     string = "SHA-512"
	HashSHA3_256   string = "SHA3-256"
	HashBLAKE2b256 string = "BLAKE2b-256"

	MACHmacSHA256   string = "HmacSHA256"
	MACHmacSHA512   string = "HmacSHA512"
	MACHmacSHA3_256 string = "HmacSHA3-256"
	MACBLAKE2b      string = "BLAKE2b-MAC"

	minMACKeyBits int = 128
	maxMACKeyBits int = 512
)

type CipherInfo struct {
	Name     string
	KeySizes []int // bits
}

type DigestInfo struct {
	Name string
	Size int // output bytes
}

// Complete, validated ciphersuite
type Suite struct {
	Cipher     CipherInfo
	KeyBits    int
	Mode       string
	Padding    string
	Hash       DigestInfo
	MAC        DigestInfo
	MACKeyBits int
}

var registryMu sync.Mutex
var cipherMap = map[string]CipherInfo{
	"aes":      {Name: AlgAES, KeySizes: []int{128, 192, 256}},
	"chacha20": {Name: AlgChaCha20, KeySizes: []int{256}},
}
var modeMap = map[string]string{
	"ctr": ModeCTR,
}
var paddingMap = map[string]string{
	"nopadding": PaddingNone,
	"none":      PaddingNone,
}
var hashMap = map[string]DigestInfo{
	"sha-256":     {Name: HashSHA256, Size: 32},
	"sha-512":     {Name: HashSHA512, Size: 64},
	"sha3-256":    {Name: HashSHA3_256, Size: 32},
	"blake2b-256": {Name: HashBLAKE2b256, Size: 32},
}
var macMap = map[string]DigestInfo{
	"hmacsha256":   {Name: MACHmacSHA256, Size: 32},
	"hmacsha512":   {Name: MACHmacSHA512, Size: 64},
	"hmacsha3-256": {Name: MACHmacSHA3_256, Size: 32},
	"blake2b-mac":  {Name: MACBLAKE2b, Size: 32},
}

// Query cipher by name, case-insensitive (concurrent safe)
func GetCipherInfo(name string) (info CipherInfo, valid bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	info, valid = cipherMap[strings.ToLower(name)]
	return
}

// Query integrity hash by name, case-insensitive (concurrent safe)
func GetHashInfo(name string) (info DigestInfo, valid bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	info, valid = hashMap[strings.ToLower(name)]
	return
}

// Query MAC by name, case-insensitive (concurrent safe)
func GetMACInfo(name string) (info DigestInfo, valid bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	info, valid = macMap[strings.ToLower(name)]
	return
}

// Resolves and validates every ciphersuite component, names come back canonical
func NewSuite(algorithm string, keyBits int, mode, padding, hashName, macName string, macKeyBits int) (suite Suite, err error) {
	var valid bool

	suite.Cipher, valid = GetCipherInfo(algorithm)
	if !valid {
		err = fmt.Errorf("unsupported symmetric algorithm %q", algorithm)
		return
	}
	if !slices.Contains(suite.Cipher.KeySizes, keyBits) {
		err = fmt.Errorf("unsupported key size %d for %s (allowed %v)", keyBits, suite.Cipher.Name, suite.Cipher.KeySizes)
		return
	}
	suite.KeyBits = keyBits

	registryMu.Lock()
	suite.Mode, valid = modeMap[strings.ToLower(mode)]
	registryMu.Unlock()
	if !valid {
		err = fmt.Errorf("unsupported block mode %q (only %s keeps datagram length)", mode, ModeCTR)
		return
	}

	registryMu.Lock()
	suite.Padding, valid = paddingMap[strings.ToLower(padding)]
	registryMu.Unlock()
	if !valid {
		err = fmt.Errorf("unsupported padding %q (stream mode uses %s)", padding, PaddingNone)
		return
	}

	suite.Hash, valid = GetHashInfo(hashName)
	if !valid {
		err = fmt.Errorf("unsupported integrity hash %q", hashName)
		return
	}

	suite.MAC, valid = GetMACInfo(macName)
	if !valid {
		err = fmt.Errorf("unsupported MAC %q", macName)
		return
	}
	if macKeyBits < minMACKeyBits || macKeyBits > maxMACKeyBits || macKeyBits%8 != 0 {
		err = fmt.Errorf("unsupported MAC key size %d (must be a multiple of 8 between %d and %d)", macKeyBits, minMACKeyBits, maxMACKeyBits)
		return
	}
	suite.MACKeyBits = macKeyBits
	return
}

func (suite Suite) KeyBytes() (size int) {
	size = suite.KeyBits / 8
	return
}

func (suite Suite) MACKeyBytes() (size int) {
	size = suite.MACKeyBits / 8
	return
}

func (suite Suite) String() (text string) {
	text = fmt.Sprintf("%s-%d/%s/%s %s %s-%d",
		suite.Cipher.Name, suite.KeyBits, suite.Mode, suite.Padding, suite.Hash.Name, suite.MAC.Name, suite.MACKeyBits)
	return
}

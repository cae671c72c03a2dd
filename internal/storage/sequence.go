// Persistent sequence number reservations so a restarted sender keeps counting upward
package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"smcp/pkg/protocol"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSequences = []byte("sequences")

var ErrExhausted = fmt.Errorf("%w: sequence space exhausted", protocol.ErrConfiguration)

// Hands out blocks of sequence numbers [start, ceiling)
type Reserver interface {
	Reserve(sessionID, peerID string, block uint32) (start uint32, ceiling uint32, err error)
	Close() (err error)
}

// bbolt backed reserver
type SequenceStore struct {
	db *bolt.DB
}

func Open(path string) (store *SequenceStore, err error) {
	err = os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		err = fmt.Errorf("%w: failed creating state directory: %w", protocol.ErrConfiguration, err)
		return
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		err = fmt.Errorf("%w: failed opening state database %s: %w", protocol.ErrConfiguration, path, err)
		return
	}

	err = db.Update(func(tx *bolt.Tx) (err error) {
		_, err = tx.CreateBucketIfNotExists(bucketSequences)
		return
	})
	if err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed initializing state database: %w", protocol.ErrConfiguration, err)
		return
	}

	store = &SequenceStore{db: db}
	return
}

// Persists the new high-water mark before returning the block
func (store *SequenceStore) Reserve(sessionID, peerID string, block uint32) (start uint32, ceiling uint32, err error) {
	if block == 0 {
		err = fmt.Errorf("reservation block cannot be zero")
		return
	}
	key := []byte(sessionID + "/" + peerID)

	err = store.db.Update(func(tx *bolt.Tx) (err error) {
		bucket := tx.Bucket(bucketSequences)

		var current uint32
		if value := bucket.Get(key); len(value) == 4 {
			current = binary.BigEndian.Uint32(value)
		}

		start, ceiling, err = nextBlock(current, block)
		if err != nil {
			return
		}

		value := binary.BigEndian.AppendUint32(nil, ceiling)
		err = bucket.Put(key, value)
		return
	})
	if err != nil {
		err = fmt.Errorf("failed reserving sequence block: %w", err)
		return
	}
	return
}

func (store *SequenceStore) Close() (err error) {
	err = store.db.Close()
	return
}

// Process-local reserver used when no state file is configured
type MemoryReserver struct {
	mu    sync.Mutex
	marks map[string]uint32
}

func NewMemoryReserver() (reserver *MemoryReserver) {
	reserver = &MemoryReserver{marks: make(map[string]uint32)}
	return
}

func (reserver *MemoryReserver) Reserve(sessionID, peerID string, block uint32) (start uint32, ceiling uint32, err error) {
	if block == 0 {
		err = fmt.Errorf("reservation block cannot be zero")
		return
	}
	key := sessionID + "/" + peerID

	reserver.mu.Lock()
	defer reserver.mu.Unlock()

	start, ceiling, err = nextBlock(reserver.marks[key], block)
	if err != nil {
		return
	}
	reserver.marks[key] = ceiling
	return
}

func (reserver *MemoryReserver) Close() (err error) {
	return
}

// Sequence numbers start at 1; a stored mark of N means 1..N-1 may have been used
func nextBlock(current uint32, block uint32) (start uint32, ceiling uint32, err error) {
	start = max(current, 1)
	if uint64(start)+uint64(block) > math.MaxUint32 {
		err = ErrExhausted
		return
	}
	ceiling = start + block
	return
}

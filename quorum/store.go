package quorum

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dashpay/creditbridge/consensus"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketQuorumsByKey   = []byte("quorums_by_type_hash")
	bucketQuorumOrderKey = []byte("quorum_order_by_type")
)

// quorumKey packs (type, hash) into the bucketQuorumsByKey key: type(u32
// little-endian) || hash(32), so a bucket cursor range-scan over a single
// type's prefix is possible even though bbolt keys are flat byte strings.
func quorumKey(quorumType uint32, hash [32]byte) []byte {
	out := make([]byte, 4+32)
	binary.LittleEndian.PutUint32(out[0:4], quorumType)
	copy(out[4:], hash[:])
	return out
}

// encodeQuorum is the on-disk shape of a consensus.Quorum: hash(32) ||
// type(u32 little-endian) || pubkey(48). This is a persistence format, not
// a consensus wire format.
func encodeQuorum(q consensus.Quorum) []byte {
	out := make([]byte, 32+4+48)
	copy(out[0:32], q.Hash[:])
	binary.LittleEndian.PutUint32(out[32:36], q.Type)
	copy(out[36:84], q.PublicKey[:])
	return out
}

func decodeQuorum(b []byte) (consensus.Quorum, error) {
	if len(b) != 32+4+48 {
		return consensus.Quorum{}, fmt.Errorf("quorum: expected 84 bytes, got %d", len(b))
	}
	var q consensus.Quorum
	copy(q.Hash[:], b[0:32])
	q.Type = binary.LittleEndian.Uint32(b[32:36])
	copy(q.PublicKey[:], b[36:84])
	return q, nil
}

// encodeOrderKey is the key under which bucketQuorumOrderKey stores the
// recency-ordered hash list for one quorum type: a flat concatenation of
// 32-byte hashes, most recent first (index 0 is the newest registration).
func encodeOrderKey(quorumType uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, quorumType)
	return out
}

// BoltManager is a consensus.QuorumManager backed by a dedicated bbolt
// file, grounded on node/store/db.go's bucket-wrapper pattern: one bucket
// for the quorum records themselves, one for each type's recency-ordered
// hash list.
type BoltManager struct {
	db *bolt.DB
}

// OpenBoltManager opens (creating if absent) a bbolt database at path
// dedicated to quorum persistence.
func OpenBoltManager(path string) (*BoltManager, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketQuorumsByKey, bucketQuorumOrderKey} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return &BoltManager{db: bdb}, nil
}

func (m *BoltManager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Register persists q as the most recent quorum of its type. Re-registering
// an already known (type, hash) pair updates its record without changing
// its place in the recency order.
func (m *BoltManager) Register(q consensus.Quorum) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketQuorumsByKey)
		orders := tx.Bucket(bucketQuorumOrderKey)

		if err := records.Put(quorumKey(q.Type, q.Hash), encodeQuorum(q)); err != nil {
			return err
		}

		orderKey := encodeOrderKey(q.Type)
		existing := orders.Get(orderKey)
		hashes, err := decodeOrderList(existing)
		if err != nil {
			return err
		}
		for _, h := range hashes {
			if h == q.Hash {
				return orders.Put(orderKey, existing)
			}
		}
		hashes = append([][32]byte{q.Hash}, hashes...)
		return orders.Put(orderKey, encodeOrderList(hashes))
	})
}

func decodeOrderList(b []byte) ([][32]byte, error) {
	if len(b)%32 != 0 {
		return nil, fmt.Errorf("quorum: order list length %d not a multiple of 32", len(b))
	}
	out := make([][32]byte, len(b)/32)
	for i := range out {
		copy(out[i][:], b[i*32:(i+1)*32])
	}
	return out, nil
}

func encodeOrderList(hashes [][32]byte) []byte {
	out := make([]byte, len(hashes)*32)
	for i, h := range hashes {
		copy(out[i*32:(i+1)*32], h[:])
	}
	return out
}

func (m *BoltManager) ScanQuorums(quorumType uint32, tip [32]byte, n int) ([]consensus.Quorum, error) {
	var out []consensus.Quorum
	err := m.db.View(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketQuorumsByKey)
		orders := tx.Bucket(bucketQuorumOrderKey)

		hashes, err := decodeOrderList(orders.Get(encodeOrderKey(quorumType)))
		if err != nil {
			return err
		}
		if n <= 0 || n > len(hashes) {
			n = len(hashes)
		}
		out = make([]consensus.Quorum, 0, n)
		for _, h := range hashes[:n] {
			raw := records.Get(quorumKey(quorumType, h))
			if raw == nil {
				return fmt.Errorf("quorum: order list references missing record %x", h)
			}
			q, err := decodeQuorum(raw)
			if err != nil {
				return err
			}
			out = append(out, q)
		}
		return nil
	})
	return out, err
}

func (m *BoltManager) GetQuorum(quorumType uint32, hash [32]byte) (consensus.Quorum, error) {
	var q consensus.Quorum
	err := m.db.View(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketQuorumsByKey)
		raw := records.Get(quorumKey(quorumType, hash))
		if raw == nil {
			return fmt.Errorf("quorum: unknown quorum %x (type %d)", hash, quorumType)
		}
		var err error
		q, err = decodeQuorum(raw)
		return err
	})
	return q, err
}

var _ consensus.QuorumManager = (*BoltManager)(nil)

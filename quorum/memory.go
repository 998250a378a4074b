package quorum

import (
	"fmt"
	"sync"

	"github.com/dashpay/creditbridge/consensus"
)

// MemoryManager is an in-memory consensus.QuorumManager keyed by quorum
// type, with insertion order doubling as recency: ScanQuorums walks the
// per-type list from most to least recently registered, mirroring "the
// most recent two quorums of a type" (§6.2) without needing a tip-relative
// scan over block history.
type MemoryManager struct {
	mu     sync.RWMutex
	byType map[uint32][]consensus.Quorum
	byHash map[uint32]map[[32]byte]consensus.Quorum
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		byType: make(map[uint32][]consensus.Quorum),
		byHash: make(map[uint32]map[[32]byte]consensus.Quorum),
	}
}

// Register adds q as the most recent quorum of its type. Re-registering an
// existing (type, hash) pair updates its public key in place without
// disturbing recency order.
func (m *MemoryManager) Register(q consensus.Quorum) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byHash[q.Type]; !ok {
		m.byHash[q.Type] = make(map[[32]byte]consensus.Quorum)
	}
	if _, exists := m.byHash[q.Type][q.Hash]; exists {
		m.byHash[q.Type][q.Hash] = q
		list := m.byType[q.Type]
		for i := range list {
			if list[i].Hash == q.Hash {
				list[i] = q
				break
			}
		}
		return
	}
	m.byHash[q.Type][q.Hash] = q
	m.byType[q.Type] = append([]consensus.Quorum{q}, m.byType[q.Type]...)
}

// ScanQuorums satisfies consensus.QuorumManager. tip is accepted for
// interface compatibility but unused: this manager has no concept of
// chain-relative quorum activation, only a flat recency-ordered list.
func (m *MemoryManager) ScanQuorums(quorumType uint32, tip [32]byte, n int) ([]consensus.Quorum, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.byType[quorumType]
	if n <= 0 || n > len(list) {
		n = len(list)
	}
	out := make([]consensus.Quorum, n)
	copy(out, list[:n])
	return out, nil
}

func (m *MemoryManager) GetQuorum(quorumType uint32, hash [32]byte) (consensus.Quorum, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byHash, ok := m.byHash[quorumType]
	if !ok {
		return consensus.Quorum{}, fmt.Errorf("quorum: unknown quorum type %d", quorumType)
	}
	q, ok := byHash[hash]
	if !ok {
		return consensus.Quorum{}, fmt.Errorf("quorum: unknown quorum %x (type %d)", hash, quorumType)
	}
	return q, nil
}

var _ consensus.QuorumManager = (*MemoryManager)(nil)

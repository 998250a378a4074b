package quorum

import (
	"testing"

	"github.com/dashpay/creditbridge/consensus"
)

func mustQuorum(typ uint32, hashByte byte) consensus.Quorum {
	var q consensus.Quorum
	q.Type = typ
	q.Hash[0] = hashByte
	q.PublicKey[0] = hashByte
	return q
}

func TestMemoryManager_ScanQuorumsMostRecentFirst(t *testing.T) {
	m := NewMemoryManager()
	m.Register(mustQuorum(1, 0x01))
	m.Register(mustQuorum(1, 0x02))
	m.Register(mustQuorum(1, 0x03))

	got, err := m.ScanQuorums(1, [32]byte{}, 2)
	if err != nil {
		t.Fatalf("ScanQuorums: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 quorums, got %d", len(got))
	}
	if got[0].Hash[0] != 0x03 || got[1].Hash[0] != 0x02 {
		t.Fatalf("expected most-recent-first order, got %+v", got)
	}
}

func TestMemoryManager_ScanQuorumsClampsToAvailable(t *testing.T) {
	m := NewMemoryManager()
	m.Register(mustQuorum(1, 0x01))

	got, err := m.ScanQuorums(1, [32]byte{}, 10)
	if err != nil {
		t.Fatalf("ScanQuorums: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 quorum, got %d", len(got))
	}
}

func TestMemoryManager_GetQuorumUnknownType(t *testing.T) {
	m := NewMemoryManager()
	if _, err := m.GetQuorum(99, [32]byte{}); err == nil {
		t.Fatalf("expected error for unknown quorum type")
	}
}

func TestMemoryManager_RegisterUpdatesInPlaceWithoutReordering(t *testing.T) {
	m := NewMemoryManager()
	m.Register(mustQuorum(1, 0x01))
	m.Register(mustQuorum(1, 0x02))

	updated := mustQuorum(1, 0x01)
	updated.PublicKey[1] = 0xff
	m.Register(updated)

	got, err := m.ScanQuorums(1, [32]byte{}, 2)
	if err != nil {
		t.Fatalf("ScanQuorums: %v", err)
	}
	if got[0].Hash[0] != 0x02 || got[1].Hash[0] != 0x01 {
		t.Fatalf("expected recency order unchanged by update, got %+v", got)
	}
	if got[1].PublicKey[1] != 0xff {
		t.Fatalf("expected in-place public key update to be visible")
	}
}

func TestStaticParams_LLMQParamsLookup(t *testing.T) {
	p := DevnetParams()
	if p.AssetLocksQuorumType() != 1 {
		t.Fatalf("expected asset locks quorum type 1, got %d", p.AssetLocksQuorumType())
	}
	llmq, err := p.LLMQParams(1)
	if err != nil {
		t.Fatalf("LLMQParams: %v", err)
	}
	if llmq.Size != 100 || llmq.Threshold != 67 {
		t.Fatalf("unexpected llmq params: %+v", llmq)
	}
	if _, err := p.LLMQParams(42); err == nil {
		t.Fatalf("expected error for unknown quorum type")
	}
}

var _ consensus.ChainParams = (*StaticParams)(nil)

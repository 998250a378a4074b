package quorum

import (
	"path/filepath"
	"testing"

	"github.com/dashpay/creditbridge/consensus"
)

func openTestBoltManager(t *testing.T) *BoltManager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quorums.db")
	m, err := OpenBoltManager(path)
	if err != nil {
		t.Fatalf("OpenBoltManager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestBoltManager_RegisterAndGetQuorum(t *testing.T) {
	m := openTestBoltManager(t)
	q := mustQuorum(1, 0x07)

	if err := m.Register(q); err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, err := m.GetQuorum(1, q.Hash)
	if err != nil {
		t.Fatalf("GetQuorum: %v", err)
	}
	if got != q {
		t.Fatalf("got=%+v want=%+v", got, q)
	}
}

func TestBoltManager_ScanQuorumsMostRecentFirst(t *testing.T) {
	m := openTestBoltManager(t)
	for _, b := range []byte{0x01, 0x02, 0x03} {
		if err := m.Register(mustQuorum(1, b)); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	got, err := m.ScanQuorums(1, [32]byte{}, 2)
	if err != nil {
		t.Fatalf("ScanQuorums: %v", err)
	}
	if len(got) != 2 || got[0].Hash[0] != 0x03 || got[1].Hash[0] != 0x02 {
		t.Fatalf("unexpected scan result: %+v", got)
	}
}

func TestBoltManager_GetQuorumUnknown(t *testing.T) {
	m := openTestBoltManager(t)
	if _, err := m.GetQuorum(1, [32]byte{0xaa}); err == nil {
		t.Fatalf("expected error for unregistered quorum")
	}
}

func TestBoltManager_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quorums.db")
	m1, err := OpenBoltManager(path)
	if err != nil {
		t.Fatalf("OpenBoltManager: %v", err)
	}
	q := mustQuorum(2, 0x09)
	if err := m1.Register(q); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m2, err := OpenBoltManager(path)
	if err != nil {
		t.Fatalf("reopen OpenBoltManager: %v", err)
	}
	defer func() { _ = m2.Close() }()

	got, err := m2.GetQuorum(2, q.Hash)
	if err != nil {
		t.Fatalf("GetQuorum after reopen: %v", err)
	}
	if got != q {
		t.Fatalf("got=%+v want=%+v", got, q)
	}
}

var _ consensus.QuorumManager = (*BoltManager)(nil)

package store

import (
	"testing"

	"github.com/dashpay/creditbridge/consensus"
)

type stubSpendVerifier struct{}

func (stubSpendVerifier) Verify(pubkey []byte, message [32]byte, signature []byte) bool { return true }

func testContext(t *testing.T, db *DB) *consensus.Context {
	t.Helper()
	return &consensus.Context{
		Index:     db.Index(),
		Store:     db.Store(),
		Snapshots: consensus.NewSnapshotCache(consensus.SnapshotCacheCapacity),
	}
}

func makeCoinbaseOnlyBlockBytes(t *testing.T, height uint64, prev [32]byte, ts uint64) ([]byte, consensus.Block) {
	t.Helper()

	cb := consensus.Tx{
		Version: consensus.TxVersionV1,
		Kind:    consensus.TxKindStandard,
		TxNonce: 0,
		Inputs: []consensus.TxInput{{
			PrevTxid: [32]byte{},
			PrevVout: consensus.TxCoinbasePrevoutVout,
		}},
		Outputs: []consensus.TxOutput{{
			Value:  0,
			Script: consensus.MakeP2PKHScript([20]byte{}),
		}},
		Locktime:     uint32(height), // #nosec G115 -- test heights are small.
		ExtraPayload: consensus.EncodeCoinbasePayload(consensus.CoinbasePayload{Version: consensus.CoinbasePayloadVersion1, AssetLockedAmount: 0}),
		Witness:      consensus.WitnessSection{Witnesses: nil},
	}

	txid, err := consensus.TxID(&cb)
	if err != nil {
		t.Fatalf("TxID: %v", err)
	}
	merkle, err := consensus.MerkleRootTxids([][32]byte{txid})
	if err != nil {
		t.Fatalf("MerkleRootTxids: %v", err)
	}

	hdr := consensus.BlockHeader{
		Version:       1,
		PrevBlockHash: prev,
		MerkleRoot:    merkle,
		Timestamp:     ts,
		Target:        consensus.MaxTarget,
		Nonce:         0,
	}

	blk := consensus.Block{
		Header:       hdr,
		Transactions: []consensus.Tx{cb},
	}
	return consensus.BlockBytes(&blk), blk
}

func blockHashOf(t *testing.T, hdr consensus.BlockHeader) [32]byte {
	t.Helper()
	h, err := consensus.BlockHash(consensus.BlockHeaderBytes(hdr))
	if err != nil {
		t.Fatalf("BlockHash: %v", err)
	}
	return h
}

func TestReorgToTip_Integration(t *testing.T) {
	var chainID [32]byte
	chainID[0] = 1
	verifier := stubSpendVerifier{}

	genBytes, genBlock := makeCoinbaseOnlyBlockBytes(t, 0, [32]byte{}, 1)

	chainIDHex := "0000000000000000000000000000000000000000000000000000000000000000"[:64]
	db, err := Open(t.TempDir(), chainIDHex)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := testContext(t, db)

	if err := db.InitGenesis(ctx, verifier, chainID, genBytes); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}
	genHash := blockHashOf(t, genBlock.Header)

	// Main chain: G -> B1 -> B2
	b1Bytes, b1 := makeCoinbaseOnlyBlockBytes(t, 1, genHash, 2)
	dec, err := db.ApplyBlockIfBestTip(ctx, verifier, chainID, b1Bytes, ApplyOptions{})
	if err != nil {
		t.Fatalf("apply b1: %v", err)
	}
	if dec != ApplyAppliedAsTip {
		t.Fatalf("unexpected decision for b1: %s", dec)
	}
	b1Hash := blockHashOf(t, b1.Header)

	b2Bytes, b2 := makeCoinbaseOnlyBlockBytes(t, 2, b1Hash, 3)
	dec, err = db.ApplyBlockIfBestTip(ctx, verifier, chainID, b2Bytes, ApplyOptions{})
	if err != nil {
		t.Fatalf("apply b2: %v", err)
	}
	if dec != ApplyAppliedAsTip {
		t.Fatalf("unexpected decision for b2: %s", dec)
	}
	_ = b2

	// Fork chain from B1: F2 -> F3 (longer => higher cumulative work).
	f2Bytes, f2 := makeCoinbaseOnlyBlockBytes(t, 2, b1Hash, 4)
	_, _ = db.ApplyBlockIfBestTip(ctx, verifier, chainID, f2Bytes, ApplyOptions{}) // may or may not trigger reorg; either is fine
	f2Hash := blockHashOf(t, f2.Header)

	f3Bytes, f3 := makeCoinbaseOnlyBlockBytes(t, 3, f2Hash, 5)
	dec, err = db.ApplyBlockIfBestTip(ctx, verifier, chainID, f3Bytes, ApplyOptions{})
	if err != nil {
		t.Fatalf("apply f3: %v", err)
	}
	if dec != ApplyAppliedAsTip {
		t.Fatalf("unexpected decision for f3: %s", dec)
	}

	m := db.Manifest()
	if m == nil || m.TipHashHex == "" {
		t.Fatalf("expected manifest to be set")
	}
	if len(m.TipHashHex) != 64 {
		t.Fatalf("unexpected tip hash hex length: %d", len(m.TipHashHex))
	}
}

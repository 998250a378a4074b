package consensus

import "testing"

func sampleTx(t *testing.T) Tx {
	t.Helper()
	return Tx{
		Version: TxVersionV1,
		Kind:    TxKindStandard,
		TxNonce: 7,
		Inputs: []TxInput{{
			PrevTxid:  [32]byte{0x01, 0x02},
			PrevVout:  3,
			ScriptSig: []byte{0xde, 0xad},
			Sequence:  0xffffffff,
		}},
		Outputs: []TxOutput{
			{Value: 1000, Script: MakeP2PKHScript([20]byte{0xaa})},
			{Value: 2000, Script: MakeP2PKHScript([20]byte{0xbb})},
		},
		Locktime:     42,
		ExtraPayload: []byte{0x01, 0x02, 0x03},
		Witness: WitnessSection{Witnesses: []WitnessItem{
			{Pubkey: []byte{0x11, 0x22}, Signature: []byte{0x33, 0x44, 0x55}},
		}},
	}
}

func TestParseTxBytes_RoundTripsTxBytes(t *testing.T) {
	tx := sampleTx(t)
	encoded := TxBytes(&tx)

	decoded, err := ParseTxBytes(encoded)
	if err != nil {
		t.Fatalf("ParseTxBytes: %v", err)
	}

	reEncoded := TxBytes(&decoded)
	if string(reEncoded) != string(encoded) {
		t.Fatalf("round-trip mismatch:\n got=%x\nwant=%x", reEncoded, encoded)
	}
}

func TestParseTxBytes_RejectsTrailingGarbage(t *testing.T) {
	tx := sampleTx(t)
	encoded := append(TxBytes(&tx), 0xff)
	if _, err := ParseTxBytes(encoded); err == nil {
		t.Fatalf("expected error for trailing bytes after a complete tx")
	}
}

func TestParseTxBytes_RejectsTruncatedInput(t *testing.T) {
	tx := sampleTx(t)
	encoded := TxBytes(&tx)
	for cut := 0; cut < len(encoded); cut += 7 {
		if _, err := ParseTxBytes(encoded[:cut]); err == nil {
			t.Fatalf("expected error for truncated input at length %d", cut)
		}
	}
}

func TestParseBlockBytes_RoundTripsBlockBytes(t *testing.T) {
	tx := sampleTx(t)
	txid, err := TxID(&tx)
	if err != nil {
		t.Fatalf("TxID: %v", err)
	}
	merkle, err := MerkleRootTxids([][32]byte{txid})
	if err != nil {
		t.Fatalf("MerkleRootTxids: %v", err)
	}
	block := Block{
		Header: BlockHeader{
			Version:       1,
			PrevBlockHash: [32]byte{0x09},
			MerkleRoot:    merkle,
			Timestamp:     100,
			Target:        MaxTarget,
			Nonce:         55,
		},
		Transactions: []Tx{tx},
	}
	encoded := BlockBytes(&block)

	decoded, err := ParseBlockBytes(encoded)
	if err != nil {
		t.Fatalf("ParseBlockBytes: %v", err)
	}
	if len(decoded.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(decoded.Transactions))
	}
	if string(BlockBytes(&decoded)) != string(encoded) {
		t.Fatalf("block round-trip mismatch")
	}
}

func TestDecodeWitnessSection_RejectsOversizedCount(t *testing.T) {
	b := CompactSize(uint64(MaxTxInputs) + 1).Encode()
	off := 0
	if _, err := DecodeWitnessSection(b, &off); err == nil {
		t.Fatalf("expected error for witness count exceeding MaxTxInputs")
	}
}

package main

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/dashpay/creditbridge/consensus"
)

func buildCoinbaseOnlyGenesisHex(t *testing.T) string {
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
		Locktime:     0,
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
		PrevBlockHash: [32]byte{},
		MerkleRoot:    merkle,
		Timestamp:     1,
		Target:        consensus.MaxTarget,
		Nonce:         0,
	}
	blk := consensus.Block{Header: hdr, Transactions: []consensus.Tx{cb}}
	return hex.EncodeToString(consensus.BlockBytes(&blk))
}

func buildCreditBridgeHex(t *testing.T) string {
	t.Helper()

	tx := consensus.Tx{
		Version: consensus.TxVersionV1,
		Kind:    consensus.TxKindStandard,
		TxNonce: 1,
		Inputs: []consensus.TxInput{{
			PrevTxid: [32]byte{0x01},
			PrevVout: 0,
		}},
		Outputs: []consensus.TxOutput{{
			Value:  1000,
			Script: consensus.MakeP2PKHScript([20]byte{0xaa}),
		}},
		Locktime:     0,
		ExtraPayload: nil,
		Witness:      consensus.WitnessSection{Witnesses: nil},
	}
	return hex.EncodeToString(consensus.TxBytes(&tx))
}

func TestCmdChainID_DeterministicOverSameGenesis(t *testing.T) {
	genesisHex := buildCoinbaseOnlyGenesisHex(t)
	p, cleanup, err := loadCryptoProvider()
	if err != nil {
		t.Fatalf("loadCryptoProvider: %v", err)
	}
	defer cleanup()

	genesisBytes, err := hexDecodeStrict(genesisHex)
	if err != nil {
		t.Fatalf("hexDecodeStrict: %v", err)
	}
	a, err := deriveChainID(p, genesisBytes)
	if err != nil {
		t.Fatalf("deriveChainID: %v", err)
	}
	b, err := deriveChainID(p, genesisBytes)
	if err != nil {
		t.Fatalf("deriveChainID: %v", err)
	}
	if a != b {
		t.Fatalf("expected deterministic chain id, got %x vs %x", a, b)
	}
}

func TestCmdTxID_RoundTripsThroughParse(t *testing.T) {
	txHex := buildCreditBridgeHex(t)
	if err := cmdTxID(txHex); err != nil {
		t.Fatalf("cmdTxID: %v", err)
	}
	if err := cmdParse(txHex); err != nil {
		t.Fatalf("cmdParse: %v", err)
	}
}

func TestCmdCompactSize_DecodesSmallValue(t *testing.T) {
	if err := cmdCompactSize("05"); err != nil {
		t.Fatalf("cmdCompactSize: %v", err)
	}
}

func TestReadHexFlag_RejectsBothAndNeither(t *testing.T) {
	if _, err := readHexFlag("tx-hex", "aa", "somefile"); err == nil {
		t.Fatalf("expected error when both flag forms are set")
	}
	if _, err := readHexFlag("tx-hex", "", ""); err == nil {
		t.Fatalf("expected error when neither flag form is set")
	}
}

func TestParseChainIDHex_RejectsWrongLength(t *testing.T) {
	if _, err := parseChainIDHex("abcd"); err == nil {
		t.Fatalf("expected error for short chain id hex")
	}
}

func TestHexDecodeStrict_StripsWhitespace(t *testing.T) {
	got, err := hexDecodeStrict(" aa bb\ncc ")
	if err != nil {
		t.Fatalf("hexDecodeStrict: %v", err)
	}
	want := []byte{0xaa, 0xbb, 0xcc}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("got=%x want=%x", got, want)
	}
}

func TestUsageCommands_MentionsCoreSubcommands(t *testing.T) {
	for _, want := range []string{"init", "import-block", "chain-id", "verify-spend", "validate-lock"} {
		if !strings.Contains(usageCommands, want) {
			t.Fatalf("usageCommands missing %q", want)
		}
	}
}

package store

import (
	"bytes"
	"testing"

	"github.com/dashpay/creditbridge/consensus"
)

func TestOutpointKey_RoundTrip(t *testing.T) {
	var txid [32]byte
	txid[0] = 1
	txid[31] = 2
	p := consensus.TxOutPoint{TxID: txid, Vout: 7}
	k := encodeOutpointKey(p)
	got, err := decodeOutpointKey(k)
	if err != nil {
		t.Fatalf("decodeOutpointKey: %v", err)
	}
	if got != p {
		t.Fatalf("roundtrip mismatch")
	}
	if _, err := decodeOutpointKey(k[:10]); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestUtxoEntry_RoundTripAndBounds(t *testing.T) {
	e := consensus.UtxoEntry{
		Output: consensus.TxOutput{
			Value:  42,
			Script: consensus.MakeP2PKHScript([20]byte{0xaa, 0xbb, 0xcc}),
		},
		CreationHeight:    9,
		CreatedByCoinbase: true,
	}
	b, err := encodeUtxoEntry(e)
	if err != nil {
		t.Fatalf("encodeUtxoEntry: %v", err)
	}
	got, err := decodeUtxoEntry(b)
	if err != nil {
		t.Fatalf("decodeUtxoEntry: %v", err)
	}
	if got.Output.Value != e.Output.Value ||
		!bytes.Equal(got.Output.Script, e.Output.Script) ||
		got.CreationHeight != e.CreationHeight ||
		got.CreatedByCoinbase != e.CreatedByCoinbase {
		t.Fatalf("decoded entry mismatch: got=%+v want=%+v", got, e)
	}

	if _, err := decodeUtxoEntry([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected truncated error")
	}
	// Corrupt script_len so it points past end.
	bad := append([]byte(nil), b...)
	// script_len starts at offset 8; tag 0xff makes the next 8 script bytes the length, a value far past the end of the buffer.
	bad[8] = 0xff
	if _, err := decodeUtxoEntry(bad); err == nil {
		t.Fatalf("expected script_len error")
	}
}


package store

import (
	"encoding/binary"
	"fmt"

	"github.com/dashpay/creditbridge/consensus"
)

func encodeOutpointKey(p consensus.TxOutPoint) []byte {
	// txid(32) || vout(u32 little-endian)
	out := make([]byte, 32+4)
	copy(out[0:32], p.TxID[:])
	binary.LittleEndian.PutUint32(out[32:36], p.Vout)
	return out
}

func decodeOutpointKey(b []byte) (consensus.TxOutPoint, error) {
	if len(b) != 36 {
		return consensus.TxOutPoint{}, fmt.Errorf("outpoint: expected 36 bytes, got %d", len(b))
	}
	var txid [32]byte
	copy(txid[:], b[0:32])
	vout := binary.LittleEndian.Uint32(b[32:36])
	return consensus.TxOutPoint{TxID: txid, Vout: vout}, nil
}

func encodeUtxoEntry(e consensus.UtxoEntry) ([]byte, error) {
	script := e.Output.Script
	if len(script) > 0xffffffff {
		return nil, fmt.Errorf("utxo: script too large")
	}
	// Canonical KV encoding:
	// value u64le | script_len CompactSize | script | creation_height u64le | created_by_coinbase u8
	//
	// Note: this is an engineering persistence format, not a consensus wire format.
	scriptLen := consensus.CompactSize(len(script)).Encode()
	out := make([]byte, 0, 8+len(scriptLen)+len(script)+8+1)
	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], e.Output.Value)
	out = append(out, tmp8[:]...)
	out = append(out, scriptLen...)
	out = append(out, script...)
	binary.LittleEndian.PutUint64(tmp8[:], e.CreationHeight)
	out = append(out, tmp8[:]...)
	// created_by_coinbase byte
	out = append(out, 0x00)
	if e.CreatedByCoinbase {
		out[len(out)-1] = 1
	}
	return out, nil
}

func decodeUtxoEntry(b []byte) (consensus.UtxoEntry, error) {
	if len(b) < 8+1+8+1 {
		return consensus.UtxoEntry{}, fmt.Errorf("utxo: truncated")
	}
	off := 0
	value := binary.LittleEndian.Uint64(b[off : off+8])
	off += 8

	scriptLenCS, n, err := consensus.DecodeCompactSize(b[off:])
	if err != nil {
		return consensus.UtxoEntry{}, fmt.Errorf("utxo: script_len: %w", err)
	}
	off += n
	scriptLen := int(scriptLenCS)
	if scriptLen < 0 || off+scriptLen+8+1 != len(b) {
		return consensus.UtxoEntry{}, fmt.Errorf("utxo: bad script_len")
	}
	script := append([]byte(nil), b[off:off+scriptLen]...)
	off += scriptLen
	creationHeight := binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	createdByCoinbase := b[off] == 1
	return consensus.UtxoEntry{
		Output: consensus.TxOutput{
			Value:  value,
			Script: script,
		},
		CreationHeight:    creationHeight,
		CreatedByCoinbase: createdByCoinbase,
	}, nil
}

package consensus

import "encoding/binary"

// BlockHeaderBytes serializes a header into its fixed-width wire form:
// Version, PrevBlockHash, MerkleRoot, Timestamp, Target, Nonce.
func BlockHeaderBytes(header BlockHeader) []byte {
	out := make([]byte, 0, 4+32+32+8+32+8)
	var tmp4 [4]byte
	var tmp8 [8]byte

	binary.LittleEndian.PutUint32(tmp4[:], header.Version)
	out = append(out, tmp4[:]...)
	out = append(out, header.PrevBlockHash[:]...)
	out = append(out, header.MerkleRoot[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], header.Timestamp)
	out = append(out, tmp8[:]...)
	out = append(out, header.Target[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], header.Nonce)
	out = append(out, tmp8[:]...)
	return out
}

// TxOutputBytes serializes a TxOutput: Value as 8-byte little-endian,
// followed by the Script length (CompactSize) and Script bytes.
func TxOutputBytes(o TxOutput) []byte {
	out := make([]byte, 0, 8+9+len(o.Script))
	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], o.Value)
	out = append(out, tmp8[:]...)
	out = append(out, CompactSize(len(o.Script)).Encode()...)
	out = append(out, o.Script...)
	return out
}

// WitnessItemBytes serializes a WitnessItem: Pubkey length (CompactSize),
// Pubkey bytes, Signature length (CompactSize), Signature bytes.
func WitnessItemBytes(w WitnessItem) []byte {
	out := make([]byte, 0, 9+len(w.Pubkey)+9+len(w.Signature))
	out = append(out, CompactSize(len(w.Pubkey)).Encode()...)
	out = append(out, w.Pubkey...)
	out = append(out, CompactSize(len(w.Signature)).Encode()...)
	out = append(out, w.Signature...)
	return out
}

// WitnessBytes serializes a witness section: item count (CompactSize)
// followed by each item's wire encoding.
func WitnessBytes(w WitnessSection) []byte {
	out := make([]byte, 0, 9)
	out = append(out, CompactSize(len(w.Witnesses)).Encode()...)
	for _, item := range w.Witnesses {
		out = append(out, WitnessItemBytes(item)...)
	}
	return out
}

// TxNoWitnessBytes serializes a transaction excluding its witness section.
//
// Layout:
//   - Version (4 bytes LE), Kind (1 byte), TxNonce (8 bytes LE)
//   - Inputs count (CompactSize), then per input: PrevTxid(32), PrevVout(4 LE),
//     ScriptSig length (CompactSize) + bytes, Sequence (4 LE)
//   - Outputs count (CompactSize), then each output via TxOutputBytes
//   - Locktime (4 bytes LE)
//   - ExtraPayload length (CompactSize) + bytes
func TxNoWitnessBytes(tx *Tx) []byte {
	out := make([]byte, 0, 4+1+8)
	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], tx.Version)
	out = append(out, tmp4[:]...)
	out = append(out, byte(tx.Kind))
	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], tx.TxNonce)
	out = append(out, tmp8[:]...)

	out = append(out, CompactSize(len(tx.Inputs)).Encode()...)
	for _, in := range tx.Inputs {
		out = append(out, in.PrevTxid[:]...)
		binary.LittleEndian.PutUint32(tmp4[:], in.PrevVout)
		out = append(out, tmp4[:]...)
		out = append(out, CompactSize(len(in.ScriptSig)).Encode()...)
		out = append(out, in.ScriptSig...)
		binary.LittleEndian.PutUint32(tmp4[:], in.Sequence)
		out = append(out, tmp4[:]...)
	}

	out = append(out, CompactSize(len(tx.Outputs)).Encode()...)
	for _, o := range tx.Outputs {
		out = append(out, TxOutputBytes(o)...)
	}

	binary.LittleEndian.PutUint32(tmp4[:], tx.Locktime)
	out = append(out, tmp4[:]...)

	out = append(out, CompactSize(len(tx.ExtraPayload)).Encode()...)
	out = append(out, tx.ExtraPayload...)
	return out
}

// TxBytes serializes tx including its witness section.
func TxBytes(tx *Tx) []byte {
	out := TxNoWitnessBytes(tx)
	out = append(out, WitnessBytes(tx.Witness)...)
	return out
}

// TxBytesWithSigCleared serializes an asset-unlock tx as TxBytes would,
// except the payload's embedded BLS signature is replaced with 96 zero
// bytes — the msgHash preimage required by §4.F.6.
func TxBytesWithSigCleared(tx *Tx) ([]byte, error) {
	if tx.Kind != TxKindAssetUnlock {
		return TxBytes(tx), nil
	}
	payload, err := DecodeAssetUnlockPayload(tx.ExtraPayload)
	if err != nil {
		return nil, err
	}
	payload.Signature = [96]byte{}
	cleared := *tx
	cleared.ExtraPayload = EncodeAssetUnlockPayload(payload)
	return TxBytes(&cleared), nil
}

// BlockBytes serializes a Block: header, transaction count (CompactSize),
// then each transaction including its witness section.
func BlockBytes(block *Block) []byte {
	out := make([]byte, 0, 64)
	out = append(out, BlockHeaderBytes(block.Header)...)
	out = append(out, CompactSize(len(block.Transactions)).Encode()...)
	for _, tx := range block.Transactions {
		out = append(out, TxBytes(&tx)...)
	}
	return out
}

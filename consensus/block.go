package consensus

// BlockHeaderBytesLen is the fixed wire length of a serialized BlockHeader:
// 4 (version) + 32 (prev) + 32 (merkle root) + 8 (timestamp) + 32 (target) + 8 (nonce).
const BlockHeaderBytesLen = 4 + 32 + 32 + 8 + 32 + 8

// ParseBlockHeaderBytes decodes a fixed-width BlockHeader from b.
func ParseBlockHeaderBytes(b []byte) (BlockHeader, error) {
	var h BlockHeader
	off := 0

	version, err := readU32le(b, &off)
	if err != nil {
		return h, err
	}
	prev, err := readBytes(b, &off, 32)
	if err != nil {
		return h, err
	}
	merkle, err := readBytes(b, &off, 32)
	if err != nil {
		return h, err
	}
	ts, err := readU64le(b, &off)
	if err != nil {
		return h, err
	}
	target, err := readBytes(b, &off, 32)
	if err != nil {
		return h, err
	}
	nonce, err := readU64le(b, &off)
	if err != nil {
		return h, err
	}
	if off != BlockHeaderBytesLen {
		return h, txerr(TxErrParse, "block header length mismatch")
	}

	h.Version = version
	copy(h.PrevBlockHash[:], prev)
	copy(h.MerkleRoot[:], merkle)
	h.Timestamp = ts
	copy(h.Target[:], target)
	h.Nonce = nonce
	return h, nil
}

// BlockHash hashes a serialized header into the block's identifying hash.
func BlockHash(headerBytes []byte) ([32]byte, error) {
	if len(headerBytes) != BlockHeaderBytesLen {
		var zero [32]byte
		return zero, txerr(TxErrParse, "block hash: invalid header length")
	}
	return sha3_256(headerBytes), nil
}

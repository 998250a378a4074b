package consensus

// AssetLockPayloadVersion1 is the only currently-known AssetLockPayload version.
const AssetLockPayloadVersion1 = 1

// AssetUnlockPayloadVersion1 is the only currently-known AssetUnlockPayload version.
const AssetUnlockPayloadVersion1 = 1

// CreditOutput is one entry of an AssetLockPayload's credit-outputs list:
// the value to mint on the companion chain and the P2PKH script it is
// addressed to there.
type CreditOutput struct {
	Value  uint64
	Script []byte
}

// AssetLockPayload is the extra_payload of a TxKindAssetLock transaction
// (§3, §6.1).
type AssetLockPayload struct {
	Version       uint16
	CreditOutputs []CreditOutput
}

// AssetUnlockPayload is the extra_payload of a TxKindAssetUnlock
// transaction (§3, §6.1).
type AssetUnlockPayload struct {
	Version         uint16
	Index           uint64
	Fee             uint32
	RequestedHeight uint32
	QuorumHash      [32]byte
	Signature       [96]byte
}

// EncodeAssetLockPayload serializes p deterministically per §6.1:
// u16 version, u16 reserved-type(0), CompactSize count, then per entry
// i64 value + varbytes script.
func EncodeAssetLockPayload(p AssetLockPayload) []byte {
	out := make([]byte, 0, 4+9)
	out = AppendU16le(out, p.Version)
	out = AppendU16le(out, 0) // reserved type field
	out = AppendCompactSize(out, uint64(len(p.CreditOutputs)))
	for _, o := range p.CreditOutputs {
		out = AppendU64le(out, o.Value)
		out = AppendCompactSize(out, uint64(len(o.Script)))
		out = append(out, o.Script...)
	}
	return out
}

// DecodeAssetLockPayload parses b into an AssetLockPayload. Decoding fails
// unless the entire input is consumed, and rejects version 0 or any
// version beyond AssetLockPayloadVersion1 (§4.A).
func DecodeAssetLockPayload(b []byte) (AssetLockPayload, error) {
	var out AssetLockPayload
	off := 0

	version, err := readU16le(b, &off)
	if err != nil {
		return out, txerr(ErrAssetLockVersion, "asset-lock payload: truncated version")
	}
	if version == 0 || version > AssetLockPayloadVersion1 {
		return out, txerr(ErrAssetLockVersion, "asset-lock payload: unsupported version")
	}

	if _, err := readU16le(b, &off); err != nil {
		return out, txerr(TxErrParse, "asset-lock payload: truncated reserved type")
	}

	count, _, err := readCompactSize(b, &off)
	if err != nil {
		return out, txerr(TxErrParse, "asset-lock payload: truncated count")
	}
	n, err := toIntLen(count, "asset-lock credit-outputs count")
	if err != nil {
		return out, txerr(TxErrParse, err.Error())
	}

	outputs := make([]CreditOutput, 0, n)
	for i := 0; i < n; i++ {
		value, err := readU64le(b, &off)
		if err != nil {
			return out, txerr(TxErrParse, "asset-lock payload: truncated output value")
		}
		scriptLen, _, err := readCompactSize(b, &off)
		if err != nil {
			return out, txerr(TxErrParse, "asset-lock payload: truncated script length")
		}
		sn, err := toIntLen(scriptLen, "asset-lock output script length")
		if err != nil {
			return out, txerr(TxErrParse, err.Error())
		}
		script, err := readBytes(b, &off, sn)
		if err != nil {
			return out, txerr(TxErrParse, "asset-lock payload: truncated script")
		}
		outputs = append(outputs, CreditOutput{Value: value, Script: append([]byte(nil), script...)})
	}

	if off != len(b) {
		return out, txerr(TxErrParse, "asset-lock payload: trailing bytes")
	}

	out.Version = version
	out.CreditOutputs = outputs
	return out, nil
}

// EncodeAssetUnlockPayload serializes p deterministically per §6.1:
// u16 version, u64 index, u32 fee, u32 requestedHeight, 32B quorumHash,
// 96B blsSignature.
func EncodeAssetUnlockPayload(p AssetUnlockPayload) []byte {
	out := make([]byte, 0, 2+8+4+4+32+96)
	out = AppendU16le(out, p.Version)
	out = AppendU64le(out, p.Index)
	out = AppendU32le(out, p.Fee)
	out = AppendU32le(out, p.RequestedHeight)
	out = append(out, p.QuorumHash[:]...)
	out = append(out, p.Signature[:]...)
	return out
}

// DecodeAssetUnlockPayload parses b into an AssetUnlockPayload. Decoding
// fails unless the entire input is consumed, and rejects version 0 or any
// version beyond AssetUnlockPayloadVersion1 (§4.A).
func DecodeAssetUnlockPayload(b []byte) (AssetUnlockPayload, error) {
	var out AssetUnlockPayload
	off := 0

	version, err := readU16le(b, &off)
	if err != nil {
		return out, txerr(ErrAssetUnlockVersion, "asset-unlock payload: truncated version")
	}
	if version == 0 || version > AssetUnlockPayloadVersion1 {
		return out, txerr(ErrAssetUnlockVersion, "asset-unlock payload: unsupported version")
	}

	index, err := readU64le(b, &off)
	if err != nil {
		return out, txerr(TxErrParse, "asset-unlock payload: truncated index")
	}
	fee, err := readU32le(b, &off)
	if err != nil {
		return out, txerr(TxErrParse, "asset-unlock payload: truncated fee")
	}
	requestedHeight, err := readU32le(b, &off)
	if err != nil {
		return out, txerr(TxErrParse, "asset-unlock payload: truncated requested_height")
	}
	quorumHashBytes, err := readBytes(b, &off, 32)
	if err != nil {
		return out, txerr(TxErrParse, "asset-unlock payload: truncated quorum_hash")
	}
	sigBytes, err := readBytes(b, &off, 96)
	if err != nil {
		return out, txerr(TxErrParse, "asset-unlock payload: truncated signature")
	}

	if off != len(b) {
		return out, txerr(TxErrParse, "asset-unlock payload: trailing bytes")
	}

	out.Version = version
	out.Index = index
	out.Fee = fee
	out.RequestedHeight = requestedHeight
	copy(out.QuorumHash[:], quorumHashBytes)
	copy(out.Signature[:], sigBytes)
	return out, nil
}

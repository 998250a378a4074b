package consensus

// CoinbasePayloadVersion1 is the only currently-known CoinbasePayload version.
const CoinbasePayloadVersion1 = 1

// CoinbasePayload is the coinbase special-transaction payload. It carries
// the chain-authoritative `locked` figure a light client (or the Builder,
// §4.D step 3) reads back without replaying the whole credit-pool
// derivation (original_source/src/evo/cbtx.cpp). The deterministic
// masternode-list commitment cbtx.cpp also carries is out of scope (spec
// Non-goals: "deterministic masternode list construction") and is
// intentionally not modeled here.
type CoinbasePayload struct {
	Version           uint16
	AssetLockedAmount uint64
}

// EncodeCoinbasePayload serializes p: u16 version, u64 asset_locked_amount.
func EncodeCoinbasePayload(p CoinbasePayload) []byte {
	out := make([]byte, 0, 10)
	out = AppendU16le(out, p.Version)
	out = AppendU64le(out, p.AssetLockedAmount)
	return out
}

// DecodeCoinbasePayload parses b into a CoinbasePayload, failing unless
// the entire input is consumed.
func DecodeCoinbasePayload(b []byte) (CoinbasePayload, error) {
	var out CoinbasePayload
	off := 0

	version, err := readU16le(b, &off)
	if err != nil {
		return out, txerr(TxErrParse, "coinbase payload: truncated version")
	}
	if version == 0 || version > CoinbasePayloadVersion1 {
		return out, txerr(TxErrParse, "coinbase payload: unsupported version")
	}
	locked, err := readU64le(b, &off)
	if err != nil {
		return out, txerr(TxErrParse, "coinbase payload: truncated asset_locked_amount")
	}
	if off != len(b) {
		return out, txerr(TxErrParse, "coinbase payload: trailing bytes")
	}

	out.Version = version
	out.AssetLockedAmount = locked
	return out, nil
}

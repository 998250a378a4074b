package consensus

import (
	"crypto/sha256"
	"strconv"
)

// ValidateAssetUnlockTxStructure runs the payload-only checks of §4.F that
// need no block-index or quorum context (steps 1-3), mirroring
// assetlocktx.cpp's CheckAssetLockTx/CheckAssetUnlockTx split (SPEC_FULL §4).
func ValidateAssetUnlockTxStructure(tx *Tx) (AssetUnlockPayload, error) {
	var zero AssetUnlockPayload
	if tx.Kind != TxKindAssetUnlock {
		return zero, txerr(ErrAssetUnlockVersion, "tx kind is not AssetUnlock")
	}
	if len(tx.Inputs) != 0 {
		return zero, txerr(ErrAssetUnlockHaveInput, "asset-unlock tx has inputs")
	}
	if len(tx.Outputs) > MaxUnlockOutputs {
		return zero, txerr(ErrAssetUnlockTooManyOut, "too many outputs")
	}

	payload, err := DecodeAssetUnlockPayload(tx.ExtraPayload)
	if err != nil {
		return zero, txerr(ErrAssetUnlockVersion, err.Error())
	}
	if payload.Version != AssetUnlockPayloadVersion1 {
		return zero, txerr(ErrAssetUnlockVersion, "unsupported asset-unlock payload version")
	}
	return payload, nil
}

// ValidateAssetUnlockTx runs the full §4.F check: structural checks, the
// duplicate-index check against indexes (the snapshot's index set, or a
// diff's in-progress clone of it so same-block reuse is also caught), and
// the signature gauntlet against parent-block index P.
func ValidateAssetUnlockTx(ctx *Context, tx *Tx, parentHash [32]byte, indexes *SkipSet) (AssetUnlockPayload, error) {
	payload, err := ValidateAssetUnlockTxStructure(tx)
	if err != nil {
		return payload, err
	}

	if indexes.Contains(payload.Index) {
		return payload, txerr(ErrAssetUnlockDuplicatedIndex, "withdrawal index already used in window")
	}

	parentHeight, ok := ctx.Index.Height(parentHash)
	if !ok {
		return payload, txerr(ErrAssetUnlockQuorumHash, "parent block not found")
	}

	if !ctx.Index.OnActiveChain(payload.QuorumHash) {
		return payload, txerr(ErrAssetUnlockQuorumHash, "quorum block is not on the active chain")
	}

	if err := verifySignatureGauntlet(ctx, tx, payload, parentHash, parentHeight); err != nil {
		return payload, err
	}

	return payload, nil
}

// verifySignatureGauntlet implements §4.F.6: msgHash, active-quorum
// lookup, the expiry window, requestId/signHash derivation, and the final
// BLS verification against the quorum's aggregate public key. The active
// quorum set is scanned relative to parentHash (block tip P), not the
// withdrawal's own quorum_hash, matching the original VerifySig's
// ScanQuorums(llmqType, pindexTip, 2) (§4.F.6).
func verifySignatureGauntlet(ctx *Context, tx *Tx, payload AssetUnlockPayload, parentHash [32]byte, parentHeight int64) error {
	msgHash, err := UnlockMsgHash(tx)
	if err != nil {
		return wrapFatal(err)
	}

	quorumType := ctx.Params.AssetLocksQuorumType()
	activeQuorums, err := ctx.Quorums.ScanQuorums(quorumType, parentHash, 2)
	if err != nil {
		return wrapFatal(err)
	}

	var activeQuorum *Quorum
	for i := range activeQuorums {
		if activeQuorums[i].Hash == payload.QuorumHash {
			activeQuorum = &activeQuorums[i]
			break
		}
	}
	if activeQuorum == nil {
		return txerr(ErrAssetUnlockNotActiveQuorum, "quorum_hash is not among the two most recent quorums of its type")
	}

	if parentHeight < int64(payload.RequestedHeight) || parentHeight >= int64(payload.RequestedHeight)+UnlockExpiryWindowBlocks {
		return txerr(ErrAssetUnlockTooLate, "requested_height outside the expiry window")
	}

	requestID := computeRequestID(payload.Index)
	signHash := computeSignHash(quorumType, payload.QuorumHash, requestID, msgHash)

	if !ctx.BLSVerifier.Verify(activeQuorum.PublicKey, signHash, payload.Signature) {
		return txerr(ErrAssetUnlockNotVerified, "BLS signature verification failed")
	}
	return nil
}

// computeRequestID computes SHA256("plwdtx" || decimal(index)) per §4.F.6.
// This is the one place this core reaches for SHA-256 rather than its own
// SHA3-256 helper (hash.go): the request-id convention is a fixed
// wire-compatibility requirement with the quorum signing scheme, not a
// free hash-algorithm choice.
func computeRequestID(index uint64) [32]byte {
	preimage := append([]byte("plwdtx"), []byte(strconv.FormatUint(index, 10))...)
	return sha256.Sum256(preimage)
}

// computeSignHash computes H(quorumType, quorumHash, requestId, msgHash).
func computeSignHash(quorumType uint32, quorumHash [32]byte, requestID [32]byte, msgHash [32]byte) [32]byte {
	preimage := make([]byte, 0, 4+32+32+32)
	preimage = AppendU32le(preimage, quorumType)
	preimage = append(preimage, quorumHash[:]...)
	preimage = append(preimage, requestID[:]...)
	preimage = append(preimage, msgHash[:]...)
	return sha3_256(preimage)
}

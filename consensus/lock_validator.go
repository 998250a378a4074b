package consensus

// ValidateAssetLockTxStructure runs the payload-only checks of §4.E that
// need no chain context, letting a mempool-style caller reject malformed
// locks cheaply before the (identical, in this core) full check runs.
// Supplements §4.E per SPEC_FULL §4, grounded on assetlocktx.cpp's
// CheckAssetLockTx/CheckAssetUnlockTx split.
func ValidateAssetLockTxStructure(tx *Tx) (AssetLockPayload, error) {
	var zero AssetLockPayload
	if tx.Kind != TxKindAssetLock {
		return zero, txerr(ErrAssetLockType, "tx kind is not AssetLock")
	}

	payload, err := DecodeAssetLockPayload(tx.ExtraPayload)
	if err != nil {
		return zero, txerr(ErrAssetLockVersion, err.Error())
	}
	if payload.Version != AssetLockPayloadVersion1 {
		return zero, txerr(ErrAssetLockVersion, "unsupported asset-lock payload version")
	}
	if len(payload.CreditOutputs) == 0 {
		return zero, txerr(ErrAssetLockEmptyCreditOutputs, "credit-outputs list is empty")
	}
	for _, o := range payload.CreditOutputs {
		if !IsP2PKHScript(o.Script) {
			return zero, txerr(ErrAssetLockPubKeyHash, "credit-output script is not P2PKH")
		}
		if o.Value == 0 {
			return zero, txerr(ErrAssetLockCreditAmount, "credit-output value is zero")
		}
	}

	burnOutput, err := findBurnOutput(tx.Outputs)
	if err != nil {
		return zero, err
	}
	if burnOutput.Value == 0 {
		return zero, txerr(ErrAssetLockZeroOutReturn, "burn output value is zero")
	}

	var creditSum uint64
	for _, o := range payload.CreditOutputs {
		creditSum, err = addUint64(creditSum, o.Value)
		if err != nil {
			return zero, wrapFatal(err)
		}
	}
	if creditSum != burnOutput.Value {
		return zero, txerr(ErrAssetLockCreditAmount, "credit-output sum does not equal burn output value")
	}

	return payload, nil
}

// isBurnCandidate reports whether s begins with the burn opcode, regardless
// of whether the rest of the script matches the canonical empty-marker
// shape — used to distinguish "no burn output" from "non-empty burn
// output" (§4.E, end-to-end scenario S3).
func isBurnCandidate(s []byte) bool {
	return len(s) >= 1 && s[0] == burnOpcode
}

// findBurnOutput locates the single burn-shaped output among outs,
// rejecting zero or multiple matches, and rejecting a burn-opcode output
// whose trailing bytes are not exactly the canonical empty marker (§4.E).
func findBurnOutput(outs []TxOutput) (TxOutput, error) {
	var found *TxOutput
	for i := range outs {
		if !isBurnCandidate(outs[i].Script) {
			continue
		}
		if found != nil {
			return TxOutput{}, txerr(ErrAssetLockMultipleReturn, "more than one burn output")
		}
		found = &outs[i]
	}
	if found == nil {
		return TxOutput{}, txerr(ErrAssetLockNoReturn, "no burn output")
	}
	if !IsBurnScript(found.Script) {
		return TxOutput{}, txerr(ErrAssetLockNonEmptyReturn, "burn output has non-empty trailing data")
	}
	return *found, nil
}

// ValidateAssetLockTx runs the full §4.E check. In this core the check is
// purely structural — asset-lock transactions need no block-index or
// quorum context — so it is a thin alias kept for API symmetry with
// ValidateAssetUnlockTx, whose full form does need *BlockIndex.
func ValidateAssetLockTx(tx *Tx) (AssetLockPayload, error) {
	return ValidateAssetLockTxStructure(tx)
}

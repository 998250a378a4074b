package consensus

// SighashV1Digest computes the domain-separated signature hash for input
// inputIndex of an ordinary (TxKindStandard) transaction, committing to the
// chain id, the version, kind and nonce, every input's outpoint and
// sequence, every output, the locktime, and this input's index and spent
// output value, so a signature cannot be replayed against a different input
// or chain. Input scripts (ScriptSig) and ExtraPayload are not committed.
func SighashV1Digest(tx *Tx, inputIndex uint32, inputValue uint64, chainID [32]byte) ([32]byte, error) {
	var zero [32]byte
	if tx == nil {
		return zero, txerr(TxErrParse, "sighash: nil tx")
	}
	if int(inputIndex) < 0 || int(inputIndex) >= len(tx.Inputs) {
		return zero, txerr(TxErrParse, "sighash: input_index out of bounds")
	}

	// hash_of_all_prevouts
	prevouts := make([]byte, 0, len(tx.Inputs)*(32+4))
	for _, in := range tx.Inputs {
		prevouts = append(prevouts, in.PrevTxid[:]...)
		prevouts = AppendU32le(prevouts, in.PrevVout)
	}
	hashOfAllPrevouts := sha3_256(prevouts)

	// hash_of_all_sequences
	sequences := make([]byte, 0, len(tx.Inputs)*4)
	for _, in := range tx.Inputs {
		sequences = AppendU32le(sequences, in.Sequence)
	}
	hashOfAllSequences := sha3_256(sequences)

	// hash_of_all_outputs
	outputsBytes := make([]byte, 0, len(tx.Outputs)*64)
	for _, o := range tx.Outputs {
		outputsBytes = AppendU64le(outputsBytes, o.Value)
		outputsBytes = AppendCompactSize(outputsBytes, uint64(len(o.Script)))
		outputsBytes = append(outputsBytes, o.Script...)
	}
	hashOfAllOutputs := sha3_256(outputsBytes)

	in := tx.Inputs[inputIndex]

	preimage := make([]byte, 0, 256)
	preimage = append(preimage, []byte("CREDITBRIDGEv1-sighash/")...)
	preimage = append(preimage, chainID[:]...)
	preimage = AppendU32le(preimage, tx.Version)
	preimage = append(preimage, byte(tx.Kind))
	preimage = AppendU64le(preimage, tx.TxNonce)
	preimage = append(preimage, hashOfAllPrevouts[:]...)
	preimage = append(preimage, hashOfAllSequences[:]...)
	preimage = AppendU32le(preimage, inputIndex)
	preimage = append(preimage, in.PrevTxid[:]...)
	preimage = AppendU32le(preimage, in.PrevVout)
	preimage = AppendU64le(preimage, inputValue)
	preimage = AppendU32le(preimage, in.Sequence)
	preimage = append(preimage, hashOfAllOutputs[:]...)
	preimage = AppendU32le(preimage, tx.Locktime)

	return sha3_256(preimage), nil
}

// UnlockMsgHash computes msgHash for an asset-unlock tx per §4.F.6: the
// hash of the transaction with its payload signature cleared to all-zero.
func UnlockMsgHash(tx *Tx) ([32]byte, error) {
	cleared, err := TxBytesWithSigCleared(tx)
	if err != nil {
		var zero [32]byte
		return zero, err
	}
	return sha3_256(cleared), nil
}

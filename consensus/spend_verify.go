package consensus

// PubKeyHash derives the 20-byte key hash bound into a P2PKH script from a
// public key. The core uses a single hash primitive throughout (sha3_256,
// truncated) rather than introducing a second digest algorithm solely for
// this binding.
func PubKeyHash(pubkey []byte) [20]byte {
	full := sha3_256(pubkey)
	var out [20]byte
	copy(out[:], full[:20])
	return out
}

// ValidateStandardTxStructure bounds an ordinary transaction's input and
// output counts and requires one witness item per input (§3, ambient to
// the bridge-specific rules but enforced at the same validator boundary).
func ValidateStandardTxStructure(tx *Tx) error {
	if len(tx.Inputs) == 0 || len(tx.Inputs) > MaxTxInputs {
		return txerr(TxErrParse, "input count out of bounds")
	}
	if len(tx.Outputs) > MaxTxOutputs {
		return txerr(TxErrParse, "output count out of bounds")
	}
	if len(tx.Witness.Witnesses) != len(tx.Inputs) {
		return txerr(TxErrWitnessOverflow, "witness count does not match input count")
	}
	return nil
}

// ValidateP2PKHSpend checks the witness at inputIndex against the UTXO it
// spends: the script must be a canonical P2PKH script, the witness pubkey
// must hash to the script's embedded key hash, coinbase inputs must have
// matured, and the signature must verify over the input's sighash digest.
func ValidateP2PKHSpend(tx *Tx, inputIndex uint32, entry UtxoEntry, chainHeight uint64, chainID [32]byte, verifier SpendVerifier) error {
	if !IsP2PKHScript(entry.Output.Script) {
		return txerr(TxErrSigInvalid, "spent output is not P2PKH")
	}
	if entry.CreatedByCoinbase && chainHeight < entry.CreationHeight+CoinbaseMaturity {
		return txerr(TxErrCoinbaseImmature, "coinbase output not yet mature")
	}

	w := tx.Witness.Witnesses[inputIndex]
	if PubKeyHash(w.Pubkey) != ScriptPubKeyHash(entry.Output.Script) {
		return txerr(TxErrSigInvalid, "pubkey does not match script pubkey hash")
	}

	digest, err := SighashV1Digest(tx, inputIndex, entry.Output.Value, chainID)
	if err != nil {
		return wrapFatal(err)
	}
	if !verifier.Verify(w.Pubkey, digest, w.Signature) {
		return txerr(TxErrSigInvalid, "signature verification failed")
	}
	return nil
}

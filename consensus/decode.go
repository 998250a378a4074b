package consensus

// DecodeTxOutput decodes one TxOutput from b starting at *off.
func DecodeTxOutput(b []byte, off *int) (TxOutput, error) {
	value, err := readU64le(b, off)
	if err != nil {
		return TxOutput{}, err
	}
	scriptLen, _, err := readCompactSize(b, off)
	if err != nil {
		return TxOutput{}, err
	}
	script, err := readBytes(b, off, int(scriptLen))
	if err != nil {
		return TxOutput{}, err
	}
	return TxOutput{Value: value, Script: append([]byte(nil), script...)}, nil
}

// DecodeWitnessItem decodes one WitnessItem from b starting at *off.
func DecodeWitnessItem(b []byte, off *int) (WitnessItem, error) {
	pkLen, _, err := readCompactSize(b, off)
	if err != nil {
		return WitnessItem{}, err
	}
	pubkey, err := readBytes(b, off, int(pkLen))
	if err != nil {
		return WitnessItem{}, err
	}
	sigLen, _, err := readCompactSize(b, off)
	if err != nil {
		return WitnessItem{}, err
	}
	sig, err := readBytes(b, off, int(sigLen))
	if err != nil {
		return WitnessItem{}, err
	}
	return WitnessItem{
		Pubkey:    append([]byte(nil), pubkey...),
		Signature: append([]byte(nil), sig...),
	}, nil
}

// DecodeWitnessSection decodes a witness section (item count prefix plus
// each item) from b starting at *off.
func DecodeWitnessSection(b []byte, off *int) (WitnessSection, error) {
	count, _, err := readCompactSize(b, off)
	if err != nil {
		return WitnessSection{}, err
	}
	if count > uint64(MaxTxInputs) {
		return WitnessSection{}, txerr(TxErrParse, "witness count exceeds limit")
	}
	items := make([]WitnessItem, 0, count)
	for i := uint64(0); i < count; i++ {
		w, err := DecodeWitnessItem(b, off)
		if err != nil {
			return WitnessSection{}, err
		}
		items = append(items, w)
	}
	return WitnessSection{Witnesses: items}, nil
}

// DecodeTx decodes a full transaction (mirroring TxBytes) from b starting at
// *off: Version, Kind, TxNonce, Inputs, Outputs, Locktime, ExtraPayload,
// Witness.
func DecodeTx(b []byte, off *int) (Tx, error) {
	var tx Tx

	version, err := readU32le(b, off)
	if err != nil {
		return Tx{}, err
	}
	tx.Version = version

	kindByte, err := readU8(b, off)
	if err != nil {
		return Tx{}, err
	}
	tx.Kind = TxKind(kindByte)

	nonce, err := readU64le(b, off)
	if err != nil {
		return Tx{}, err
	}
	tx.TxNonce = nonce

	inCount, _, err := readCompactSize(b, off)
	if err != nil {
		return Tx{}, err
	}
	if inCount > uint64(MaxTxInputs) {
		return Tx{}, txerr(TxErrParse, "input count exceeds limit")
	}
	inputs := make([]TxInput, 0, inCount)
	for i := uint64(0); i < inCount; i++ {
		var in TxInput
		prevTxid, err := readBytes(b, off, 32)
		if err != nil {
			return Tx{}, err
		}
		copy(in.PrevTxid[:], prevTxid)
		prevVout, err := readU32le(b, off)
		if err != nil {
			return Tx{}, err
		}
		in.PrevVout = prevVout
		scriptSigLen, _, err := readCompactSize(b, off)
		if err != nil {
			return Tx{}, err
		}
		scriptSig, err := readBytes(b, off, int(scriptSigLen))
		if err != nil {
			return Tx{}, err
		}
		in.ScriptSig = append([]byte(nil), scriptSig...)
		seq, err := readU32le(b, off)
		if err != nil {
			return Tx{}, err
		}
		in.Sequence = seq
		inputs = append(inputs, in)
	}
	tx.Inputs = inputs

	outCount, _, err := readCompactSize(b, off)
	if err != nil {
		return Tx{}, err
	}
	if outCount > uint64(MaxTxOutputs) {
		return Tx{}, txerr(TxErrParse, "output count exceeds limit")
	}
	outputs := make([]TxOutput, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		o, err := DecodeTxOutput(b, off)
		if err != nil {
			return Tx{}, err
		}
		outputs = append(outputs, o)
	}
	tx.Outputs = outputs

	locktime, err := readU32le(b, off)
	if err != nil {
		return Tx{}, err
	}
	tx.Locktime = locktime

	payloadLen, _, err := readCompactSize(b, off)
	if err != nil {
		return Tx{}, err
	}
	payload, err := readBytes(b, off, int(payloadLen))
	if err != nil {
		return Tx{}, err
	}
	tx.ExtraPayload = append([]byte(nil), payload...)

	witness, err := DecodeWitnessSection(b, off)
	if err != nil {
		return Tx{}, err
	}
	tx.Witness = witness

	return tx, nil
}

// ParseTxBytes decodes a single transaction from its full wire encoding,
// requiring the entire buffer to be consumed.
func ParseTxBytes(b []byte) (Tx, error) {
	off := 0
	tx, err := DecodeTx(b, &off)
	if err != nil {
		return Tx{}, err
	}
	if off != len(b) {
		return Tx{}, txerr(TxErrParse, "trailing bytes after transaction")
	}
	return tx, nil
}

// ParseBlockBytes decodes a full Block (header plus every transaction,
// mirroring BlockBytes) from its wire encoding, requiring the entire buffer
// to be consumed.
func ParseBlockBytes(b []byte) (Block, error) {
	if len(b) < BlockHeaderBytesLen {
		return Block{}, txerr(TxErrParse, "block: truncated header")
	}
	header, err := ParseBlockHeaderBytes(b[:BlockHeaderBytesLen])
	if err != nil {
		return Block{}, err
	}
	off := BlockHeaderBytesLen

	txCount, _, err := readCompactSize(b, &off)
	if err != nil {
		return Block{}, err
	}
	txs := make([]Tx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx, err := DecodeTx(b, &off)
		if err != nil {
			return Block{}, err
		}
		txs = append(txs, tx)
	}
	if off != len(b) {
		return Block{}, txerr(TxErrParse, "block: trailing bytes")
	}
	return Block{Header: header, Transactions: txs}, nil
}

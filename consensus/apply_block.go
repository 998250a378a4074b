package consensus

// ApplyBlock validates block against vctx (header linkage, PoW, Merkle
// root, timestamp bounds) and, on success, routes every transaction
// through the credit-pool gauntlet (§2 Data flow): a Diff is built from
// the parent's snapshot, each transaction is processed in block order
// (§5 "Ordering guarantees"), and the diff is finalized against the
// coinbase's declared target locked amount to yield the snapshot for the
// new tip.
func ApplyBlock(ctx *Context, block *Block, vctx BlockValidationContext, parentHash [32]byte) (*CreditPoolSnapshot, error) {
	if err := checkBlockHeader(block, vctx); err != nil {
		return nil, err
	}
	if err := checkMerkleRoot(block); err != nil {
		return nil, err
	}
	if err := checkCoinbasePresence(block); err != nil {
		return nil, err
	}

	blockHash, err := BlockHash(BlockHeaderBytes(block.Header))
	if err != nil {
		return nil, wrapFatal(err)
	}

	baseSnapshot, err := BuildCreditPool(ctx, parentHash)
	if err != nil {
		return nil, err
	}

	diff := NewCreditPoolDiff(baseSnapshot)
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if isCoinbaseTx(tx) {
			continue
		}
		if err := diff.ProcessTransaction(ctx, tx, parentHash); err != nil {
			return nil, err
		}
	}

	cb, err := decodeBlockCoinbasePayload(block)
	if err != nil {
		return nil, err
	}

	snapshot, err := diff.Finalize(cb.AssetLockedAmount)
	if err != nil {
		return nil, err
	}

	ctx.Snapshots.Put(blockHash, snapshot)
	return snapshot, nil
}

func checkBlockHeader(block *Block, vctx BlockValidationContext) error {
	if len(vctx.AncestorHeaders) > 0 {
		parent := vctx.AncestorHeaders[len(vctx.AncestorHeaders)-1]
		parentHash, err := BlockHash(BlockHeaderBytes(parent))
		if err != nil {
			return wrapFatal(err)
		}
		if parentHash != block.Header.PrevBlockHash {
			return txerr(BlockErrLinkageInvalid, "prev_block_hash does not match parent")
		}
	}

	if err := PowCheck(BlockHeaderBytes(block.Header), block.Header.Target); err != nil {
		return err
	}

	if vctx.LocalTimeSet && block.Header.Timestamp > vctx.LocalTime+MaxFutureDrift {
		return txerr(BlockErrTimestampFuture, "block timestamp too far in the future")
	}
	return nil
}

func checkMerkleRoot(block *Block) error {
	txids := make([][32]byte, 0, len(block.Transactions))
	for i := range block.Transactions {
		id, err := TxID(&block.Transactions[i])
		if err != nil {
			return wrapFatal(err)
		}
		txids = append(txids, id)
	}
	root, err := MerkleRootTxids(txids)
	if err != nil {
		return wrapFatal(err)
	}
	if root != block.Header.MerkleRoot {
		return txerr(BlockErrMerkleInvalid, "merkle root mismatch")
	}
	return nil
}

func checkCoinbasePresence(block *Block) error {
	if len(block.Transactions) == 0 || !isCoinbaseTx(&block.Transactions[0]) {
		return txerr(BlockErrCoinbaseInvalid, "first transaction is not coinbase")
	}
	for i := 1; i < len(block.Transactions); i++ {
		if isCoinbaseTx(&block.Transactions[i]) {
			return txerr(BlockErrCoinbaseInvalid, "coinbase transaction outside position 0")
		}
	}
	return nil
}

// decodeBlockCoinbasePayload extracts and decodes the coinbase's extra
// payload, which carries the authoritative target locked amount (§4.G).
func decodeBlockCoinbasePayload(block *Block) (CoinbasePayload, error) {
	coinbase := &block.Transactions[0]
	return DecodeCoinbasePayload(coinbase.ExtraPayload)
}

// TxID computes the hash identifying tx (its non-witness serialization).
func TxID(tx *Tx) ([32]byte, error) {
	return sha3_256(TxNoWitnessBytes(tx)), nil
}

package consensus

// blockFrame is one ancestor block gathered during the iterative walk:
// just the pieces BuildCreditPool needs, kept out of the main loop body to
// make the accumulation pass read top-to-bottom.
type blockFrame struct {
	hash   [32]byte
	locked uint64 // coinbase AssetLockedAmount at this block
	// unlockEntries is every well-formed unlock tx's (index, fee+outputs) pair.
	unlockEntries []unlockEntry
}

type unlockEntry struct {
	index uint64
	total uint64
}

// BuildCreditPool derives the CreditPoolSnapshot at block tip (§4.D),
// memoized in ctx.Snapshots by block hash. The walk is iterative, not
// recursive (§9 "Recursive snapshot build"): it accumulates into a
// growable buffer bounded at CreditPoolWindow frames regardless of
// platform stack limits.
func BuildCreditPool(ctx *Context, tip [32]byte) (*CreditPoolSnapshot, error) {
	if cached, ok := ctx.Snapshots.Get(tip); ok {
		return cached, nil
	}

	frames, baseSnapshot, err := walkAncestors(ctx, tip)
	if err != nil {
		return nil, err
	}

	snapshot, err := accumulate(frames, baseSnapshot)
	if err != nil {
		return nil, err
	}

	ctx.Snapshots.Put(tip, snapshot)
	return snapshot, nil
}

// walkAncestors iteratively collects ancestor blocks from tip backward,
// stopping at CreditPoolWindow frames, a cached ancestor snapshot, or
// genesis (no parent). Frames are returned oldest-first. It gathers at most
// CreditPoolWindow frames, not W+1: applyFrame/accumulate only ever retain
// the last W blocks' contributions regardless of how many frames are fed to
// them, so a block exactly W ancestors back must never be double-counted
// against the one block fewer that latelyUnlocked windows over.
func walkAncestors(ctx *Context, tip [32]byte) ([]blockFrame, *CreditPoolSnapshot, error) {
	var frames []blockFrame
	var base *CreditPoolSnapshot

	cur := tip
	for i := 0; i < CreditPoolWindow; i++ {
		if i > 0 {
			if cached, ok := ctx.Snapshots.Get(cur); ok {
				base = cached
				break
			}
		}

		block, err := ctx.Store.ReadBlock(cur)
		if err != nil {
			return nil, nil, wrapFatal(err)
		}
		cb, err := ctx.Store.ReadCoinbasePayload(cur)
		if err != nil {
			return nil, nil, wrapFatal(err)
		}

		frame := blockFrame{hash: cur, locked: cb.AssetLockedAmount}
		for _, tx := range block.Transactions {
			if tx.Kind != TxKindAssetUnlock {
				continue
			}
			payload, err := DecodeAssetUnlockPayload(tx.ExtraPayload)
			if err != nil {
				return nil, nil, wrapFatal(err)
			}
			total, err := unlockTotal(payload, tx.Outputs)
			if err != nil {
				return nil, nil, wrapFatal(err)
			}
			frame.unlockEntries = append(frame.unlockEntries, unlockEntry{index: payload.Index, total: total})
		}
		frames = append(frames, frame)

		parent, ok := ctx.Index.ParentHash(cur)
		if !ok {
			break // genesis
		}
		cur = parent
	}

	// Reverse to oldest-first.
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames, base, nil
}

// unlockTotal computes payload.fee + sum(outputs) with overflow checking.
func unlockTotal(payload AssetUnlockPayload, outputs []TxOutput) (uint64, error) {
	total := uint64(payload.Fee)
	for _, o := range outputs {
		var err error
		total, err = addUint64(total, o.Value)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// accumulate replays the gathered frames oldest-to-newest onto base (nil at
// genesis) through applyFrame, the same per-block step CreditPoolDiff.Finalize
// uses to promote a single block. Folding one frame at a time this way,
// rather than summing the whole slice in bulk, is what makes the §8
// equivalence property hold by construction: a from-scratch rebuild after a
// cache eviction and a sequential one-block-at-a-time validation run the
// identical operation per block, so the two can never diverge.
func accumulate(frames []blockFrame, base *CreditPoolSnapshot) (*CreditPoolSnapshot, error) {
	snapshot := base
	for _, frame := range frames {
		var err error
		snapshot, err = applyFrame(snapshot, frame)
		if err != nil {
			return nil, err
		}
	}
	if snapshot == nil {
		// No ancestors and no cached base: tip is genesis itself.
		return &CreditPoolSnapshot{Indexes: NewSkipSet(SkipSetCapacity)}, nil
	}
	return snapshot, nil
}

// applyFrame folds one more block's frame into base (nil at genesis),
// advancing the W-block sliding window by exactly one block (§4.D steps
// 3-6): it commits the new frame's unlock indices and total, then, once the
// window exceeds CreditPoolWindow, expires the oldest frame's contribution
// so its indices return to EXPIRED-FROM-WINDOW (§4.G) and LatelyUnlocked no
// longer counts it. CreditPoolDiff.Finalize calls this with a single frame
// built from the block just validated; accumulate calls it once per
// gathered ancestor frame. Same function, same result, either way, which is
// what the §8 from-scratch/incremental equivalence property requires.
func applyFrame(base *CreditPoolSnapshot, frame blockFrame) (*CreditPoolSnapshot, error) {
	var window []blockFrame
	var latelyUnlocked uint64
	indexes := NewSkipSet(SkipSetCapacity)
	if base != nil {
		window = append(window, base.window...)
		latelyUnlocked = base.LatelyUnlocked
		indexes = base.Indexes.Clone()
	}

	var blockUnlocked uint64
	for _, entry := range frame.unlockEntries {
		if !indexes.Add(entry.index) {
			return nil, wrapFatal(errTooManyExceptions)
		}
		var err error
		blockUnlocked, err = addUint64(blockUnlocked, entry.total)
		if err != nil {
			return nil, wrapFatal(err)
		}
	}
	var err error
	latelyUnlocked, err = addUint64(latelyUnlocked, blockUnlocked)
	if err != nil {
		return nil, wrapFatal(err)
	}
	window = append(window, frame)

	if len(window) > CreditPoolWindow {
		expiring := window[0]
		window = append([]blockFrame(nil), window[1:]...)

		var expiredTotal uint64
		for _, entry := range expiring.unlockEntries {
			indexes.Expire(entry.index)
			expiredTotal, err = addUint64(expiredTotal, entry.total)
			if err != nil {
				return nil, wrapFatal(err)
			}
		}
		latelyUnlocked, err = subUint64(latelyUnlocked, expiredTotal)
		if err != nil {
			return nil, wrapFatal(err)
		}
	}

	currentLimit, err := computeCurrentLimit(frame.locked, latelyUnlocked)
	if err != nil {
		return nil, err
	}

	return &CreditPoolSnapshot{
		Locked:         frame.locked,
		CurrentLimit:   currentLimit,
		LatelyUnlocked: latelyUnlocked,
		Indexes:        indexes,
		window:         window,
	}, nil
}

// computeCurrentLimit implements the §4.D rate rule with the §9-mandated
// saturating subtraction: no intermediate step may wrap a uint64.
func computeCurrentLimit(locked uint64, latelyUnlocked uint64) (uint64, error) {
	limit := locked

	sum, err := addUint64(limit, latelyUnlocked)
	if err != nil {
		return 0, wrapFatal(err)
	}
	denomSum, err := addUint64(locked, latelyUnlocked)
	if err != nil {
		return 0, wrapFatal(err)
	}
	tenth := denomSum / 10

	if sum > tenth && sum > LimitLow {
		limit = saturatingSub(tenth, latelyUnlocked)
		if limit > locked {
			limit = locked
		}
	}

	sum2, err := addUint64(limit, latelyUnlocked)
	if err != nil {
		return 0, wrapFatal(err)
	}
	if sum2 > LimitHigh {
		limit = saturatingSub(LimitHigh, latelyUnlocked)
	}

	return limit, nil
}

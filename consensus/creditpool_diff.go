package consensus

// CreditPoolDiff is initialized from a snapshot and exclusively owns a
// pending mutation of it for the duration of one block's validation
// (§3, §4.G). It is dropped at block-validation end; on success its
// accumulators are promoted into a fresh snapshot cached under the new
// block hash.
type CreditPoolDiff struct {
	base *CreditPoolSnapshot

	sessionLocked        uint64
	sessionUnlocked      uint64
	sessionUnlockEntries []unlockEntry
	newIndexes           *SkipSet
}

// NewCreditPoolDiff creates a diff that exclusively owns a pending
// mutation of snapshot's index set (§3 "Relationships & ownership"):
// newIndexes starts as a clone of the base snapshot's indexes and accrues
// this block's withdrawals directly, so ProcessTransaction can reject a
// same-block duplicate without consulting the base snapshot again. Finalize
// does not promote newIndexes itself; it rebuilds the committed index set
// through applyFrame so window expiry is applied identically to every block.
func NewCreditPoolDiff(snapshot *CreditPoolSnapshot) *CreditPoolDiff {
	return &CreditPoolDiff{
		base:       snapshot,
		newIndexes: snapshot.Indexes.Clone(),
	}
}

// ProcessTransaction runs tx through the appropriate validator and, on
// success, folds its effect into the diff's session accumulators (§4.G).
// Non-lock/unlock transactions pass through unchanged.
func (d *CreditPoolDiff) ProcessTransaction(ctx *Context, tx *Tx, parentHash [32]byte) error {
	switch tx.Kind {
	case TxKindAssetLock:
		payload, err := ValidateAssetLockTx(tx)
		if err != nil {
			return err
		}
		burnOutput, err := findBurnOutput(tx.Outputs)
		if err != nil {
			return err
		}
		_ = payload
		sessionLocked, err := addUint64(d.sessionLocked, burnOutput.Value)
		if err != nil {
			return wrapFatal(err)
		}
		d.sessionLocked = sessionLocked
		return nil

	case TxKindAssetUnlock:
		payload, err := ValidateAssetUnlockTx(ctx, tx, parentHash, d.newIndexes)
		if err != nil {
			return err
		}
		total, err := unlockTotal(payload, tx.Outputs)
		if err != nil {
			return wrapFatal(err)
		}
		sessionUnlocked, err := addUint64(d.sessionUnlocked, total)
		if err != nil {
			return wrapFatal(err)
		}
		if sessionUnlocked > d.base.CurrentLimit {
			return txerr(ErrCreditPoolUnlockTooMuch, "session unlocked total exceeds current_limit")
		}
		d.sessionUnlocked = sessionUnlocked
		if !d.newIndexes.Add(payload.Index) {
			return wrapFatal(errTooManyExceptions)
		}
		d.sessionUnlockEntries = append(d.sessionUnlockEntries, unlockEntry{index: payload.Index, total: total})
		return nil

	default:
		return nil
	}
}

var errTooManyExceptions = txerr(ErrAssetUnlockDuplicatedIndex, "skip-set exception capacity exceeded")

// Finalize checks the block's coinbase-declared target locked amount
// against the diff's accumulated effect, per §4.G's final conservation
// check, then promotes the block through applyFrame, the same per-block
// window-advance step BuildCreditPool's from-scratch replay uses. The
// resulting snapshot's LatelyUnlocked and Indexes are windowed identically
// regardless of which path produced them (§8 equivalence).
func (d *CreditPoolDiff) Finalize(targetLocked uint64) (*CreditPoolSnapshot, error) {
	lockedAfterInflow, err := addUint64(d.base.Locked, d.sessionLocked)
	if err != nil {
		return nil, wrapFatal(err)
	}
	locked, err := subUint64(lockedAfterInflow, d.sessionUnlocked)
	if err != nil {
		return nil, txerr(ErrCreditPoolLockedMismatch, "sessionUnlocked exceeds locked+sessionLocked")
	}
	if locked != targetLocked {
		return nil, txerr(ErrCreditPoolLockedMismatch, "coinbase target locked amount does not match computed locked")
	}

	frame := blockFrame{locked: targetLocked, unlockEntries: d.sessionUnlockEntries}
	return applyFrame(d.base, frame)
}

package store

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"

	"github.com/dashpay/creditbridge/consensus"

	bolt "go.etcd.io/bbolt"
)

// ApplyDecision reports the outcome of offering a block to the chain.
type ApplyDecision string

const (
	ApplyStoredNotSelected ApplyDecision = "STORED_NOT_SELECTED"
	ApplyOrphaned          ApplyDecision = "ORPHANED"
	ApplyInvalidAncestry   ApplyDecision = "INVALID_ANCESTRY"
	ApplyAppliedAsTip      ApplyDecision = "APPLIED_AS_NEW_TIP"
)

// ApplyOptions carries the block-validation-context knobs that have no
// other natural home in persisted state (§6.2 BlockValidationContext).
type ApplyOptions struct {
	LocalTime    uint64
	LocalTimeSet bool
}

// Stage03Decision is the outcome of the cheap header/ancestry/fork-choice
// pass that runs before a block's transactions are ever validated.
type Stage03Decision string

const (
	Stage03Orphaned        Stage03Decision = "ORPHANED"
	Stage03InvalidAncestry Stage03Decision = "INVALID_ANCESTRY"
	Stage03NotSelected     Stage03Decision = "STORED_NOT_SELECTED"
	Stage03CandidateBest   Stage03Decision = "CANDIDATE_BEST"
)

type Stage03Result struct {
	Decision       Stage03Decision
	BlockHash      [32]byte
	Height         uint64
	CumulativeWork *big.Int
}

func parseHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func betterThanTip(candidateWork *big.Int, candidateHash [32]byte, tipWork *big.Int, tipHash [32]byte) bool {
	cmp := candidateWork.Cmp(tipWork)
	if cmp > 0 {
		return true
	}
	if cmp < 0 {
		return false
	}
	// Tie-break: lexicographically smaller block_hash wins (bytewise big-endian).
	return bytes.Compare(candidateHash[:], tipHash[:]) < 0
}

// ImportStage0To3 parses a block, persists header+block bytes, and runs
// fork-choice candidate selection against the current manifest tip. Stage
// 4/5 (full validation + apply/reorg) are handled by ApplyBlockIfBestTip.
func (d *DB) ImportStage0To3(blockBytes []byte, opts ApplyOptions) (*Stage03Result, error) {
	if d == nil || d.db == nil {
		return nil, fmt.Errorf("db: not open")
	}
	if d.manifest == nil {
		return nil, fmt.Errorf("db: chain not initialized (missing manifest)")
	}

	block, err := consensus.ParseBlockBytes(blockBytes)
	if err != nil {
		return nil, err
	}
	headerBytes := consensus.BlockHeaderBytes(block.Header)
	blockHash, err := consensus.BlockHash(headerBytes)
	if err != nil {
		return nil, err
	}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketHeaders).Put(blockHash[:], headerBytes); err != nil {
			return err
		}
		return tx.Bucket(bucketBlocks).Put(blockHash[:], blockBytes)
	}); err != nil {
		return nil, err
	}

	prev := block.Header.PrevBlockHash
	work, err := WorkFromTarget(block.Header.Target)
	if err != nil {
		return nil, err
	}

	if prev == ([32]byte{}) {
		return nil, fmt.Errorf("import: non-genesis block with zero prev_block_hash")
	}

	parent, ok, err := d.GetIndex(prev)
	if err != nil {
		return nil, err
	}
	if !ok {
		entry := BlockIndexEntry{
			Height:         0,
			PrevHash:       prev,
			CumulativeWork: new(big.Int).Set(work),
			Status:         BlockStatusOrphaned,
		}
		if err := d.PutIndex(blockHash, entry); err != nil {
			return nil, err
		}
		return &Stage03Result{Decision: Stage03Orphaned, BlockHash: blockHash, Height: 0, CumulativeWork: work}, nil
	}
	if parent.Status == BlockStatusInvalid || parent.Status == BlockStatusOrphaned {
		cumulative := new(big.Int).Add(parent.CumulativeWork, work)
		entry := BlockIndexEntry{
			Height:         parent.Height + 1,
			PrevHash:       prev,
			CumulativeWork: cumulative,
			Status:         BlockStatusInvalid,
		}
		if err := d.PutIndex(blockHash, entry); err != nil {
			return nil, err
		}
		return &Stage03Result{Decision: Stage03InvalidAncestry, BlockHash: blockHash, Height: entry.Height, CumulativeWork: cumulative}, nil
	}

	height := parent.Height + 1
	cumulative := new(big.Int).Add(parent.CumulativeWork, work)
	if err := d.PutIndex(blockHash, BlockIndexEntry{
		Height:         height,
		PrevHash:       prev,
		CumulativeWork: new(big.Int).Set(cumulative),
		Status:         BlockStatusUnknown,
	}); err != nil {
		return nil, err
	}

	tipHash, err := parseHex32(d.manifest.TipHashHex)
	if err != nil {
		return nil, fmt.Errorf("manifest tip_hash: %w", err)
	}
	tipWork := new(big.Int)
	if _, ok := tipWork.SetString(d.manifest.TipCumulativeWorkDec, 10); !ok {
		return nil, fmt.Errorf("manifest tip_cumulative_work: parse")
	}

	decision := Stage03NotSelected
	if betterThanTip(cumulative, blockHash, tipWork, tipHash) {
		decision = Stage03CandidateBest
	}
	return &Stage03Result{Decision: decision, BlockHash: blockHash, Height: height, CumulativeWork: cumulative}, nil
}

// ApplyBlockIfBestTip runs the full staged pipeline: candidate selection,
// then either a direct connect onto the current tip or a reorg onto the
// new best chain.
func (d *DB) ApplyBlockIfBestTip(
	ctx *consensus.Context,
	verifier consensus.SpendVerifier,
	chainID [32]byte,
	blockBytes []byte,
	opts ApplyOptions,
) (ApplyDecision, error) {
	st03, err := d.ImportStage0To3(blockBytes, opts)
	if err != nil {
		return "", err
	}
	switch st03.Decision {
	case Stage03Orphaned:
		return ApplyOrphaned, nil
	case Stage03InvalidAncestry:
		return ApplyInvalidAncestry, nil
	case Stage03NotSelected:
		return ApplyStoredNotSelected, nil
	case Stage03CandidateBest:
	default:
		return "", fmt.Errorf("unknown stage03 decision")
	}

	block, err := consensus.ParseBlockBytes(blockBytes)
	if err != nil {
		return "", err
	}
	blockHash, err := consensus.BlockHash(consensus.BlockHeaderBytes(block.Header))
	if err != nil {
		return "", err
	}
	tipHash, err := parseHex32(d.manifest.TipHashHex)
	if err != nil {
		return "", err
	}
	if block.Header.PrevBlockHash != tipHash {
		if err := d.ReorgToTip(ctx, verifier, chainID, blockHash, opts); err != nil {
			return "", err
		}
		return ApplyAppliedAsTip, nil
	}

	if err := d.connectBlock(ctx, verifier, chainID, &block, blockHash, opts); err != nil {
		idx, ok, _ := d.GetIndex(blockHash)
		if ok {
			idx.Status = BlockStatusInvalid
			_ = d.PutIndex(blockHash, *idx)
		}
		return "", err
	}
	return ApplyAppliedAsTip, nil
}

// connectBlock runs full validation (credit-pool accounting via
// consensus.ApplyBlock, plus ordinary P2PKH spend checks against the live
// UTXO set) for a block that directly extends the current manifest tip,
// then persists the result atomically.
func (d *DB) connectBlock(
	ctx *consensus.Context,
	verifier consensus.SpendVerifier,
	chainID [32]byte,
	block *consensus.Block,
	blockHash [32]byte,
	opts ApplyOptions,
) error {
	parentHash := block.Header.PrevBlockHash
	parentIndex, ok, err := d.GetIndex(parentHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("missing parent index for connect")
	}
	height := parentIndex.Height + 1

	ancestorHeaders, err := d.loadAncestorHeadersForParent(parentHash, height)
	if err != nil {
		return err
	}
	vctx := consensus.BlockValidationContext{
		Height:          height,
		AncestorHeaders: ancestorHeaders,
		LocalTime:       opts.LocalTime,
		LocalTimeSet:    opts.LocalTimeSet,
	}

	if _, err := consensus.ApplyBlock(ctx, block, vctx, parentHash); err != nil {
		return err
	}

	utxo, err := d.LoadUTXOSet()
	if err != nil {
		return err
	}
	undo, createdEntries, err := validateAndDiffUTXOSet(verifier, height, chainID, block, utxo)
	if err != nil {
		return err
	}
	for _, ce := range createdEntries {
		undo.Created = append(undo.Created, ce.Point)
	}

	return d.persistConnect(blockHash, height, undo, createdEntries)
}

type createdEntry struct {
	Point consensus.TxOutPoint
	Entry consensus.UtxoEntry
}

// validateAndDiffUTXOSet checks every ordinary input's P2PKH spend against
// utxo (the pre-block set) and computes the undo record plus the set of
// newly created spendable outputs. Burn outputs (asset-lock's OP_RETURN-
// shaped marker) never enter the UTXO set.
func validateAndDiffUTXOSet(
	verifier consensus.SpendVerifier,
	height uint64,
	chainID [32]byte,
	block *consensus.Block,
	utxo map[consensus.TxOutPoint]consensus.UtxoEntry,
) (UndoRecord, []createdEntry, error) {
	undo := UndoRecord{}
	created := make([]createdEntry, 0, 16)

	for txi := range block.Transactions {
		tx := &block.Transactions[txi]
		isCoinbase := consensus.IsCoinbaseTx(tx)

		if !isCoinbase {
			for i, in := range tx.Inputs {
				op := consensus.TxOutPoint{TxID: in.PrevTxid, Vout: in.PrevVout}
				prev, ok := utxo[op]
				if !ok {
					return UndoRecord{}, nil, fmt.Errorf("spend: missing utxo %x:%d", op.TxID, op.Vout)
				}
				if err := consensus.ValidateP2PKHSpend(tx, uint32(i), prev, height, chainID, verifier); err != nil { // #nosec G115 -- input index bounded by MaxTxInputs.
					return UndoRecord{}, nil, err
				}
				undo.Spent = append(undo.Spent, UndoSpent{OutPoint: op, RestoredEntry: prev})
				delete(utxo, op)
			}
		}

		txid, err := consensus.TxID(tx)
		if err != nil {
			return UndoRecord{}, nil, err
		}
		for vout, out := range tx.Outputs {
			if consensus.IsBurnScript(out.Script) {
				continue
			}
			point := consensus.TxOutPoint{TxID: txid, Vout: uint32(vout)} // #nosec G115 -- vout bounded by MaxTxOutputs.
			entry := consensus.UtxoEntry{Output: out, CreationHeight: height, CreatedByCoinbase: isCoinbase}
			created = append(created, createdEntry{Point: point, Entry: entry})
			utxo[point] = entry
		}
	}
	return undo, created, nil
}

func (d *DB) persistConnect(blockHash [32]byte, height uint64, undo UndoRecord, created []createdEntry) error {
	idx, ok, err := d.GetIndex(blockHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("missing index entry for candidate")
	}
	idx.Status = BlockStatusValid
	indexBytes, err := encodeIndexEntry(*idx)
	if err != nil {
		return err
	}
	undoBytes, err := encodeUndoRecord(undo)
	if err != nil {
		return err
	}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketUndo).Put(blockHash[:], undoBytes); err != nil {
			return err
		}
		bu := tx.Bucket(bucketUtxo)
		for _, s := range undo.Spent {
			if err := bu.Delete(encodeOutpointKey(s.OutPoint)); err != nil {
				return err
			}
		}
		for _, ce := range created {
			val, err := encodeUtxoEntry(ce.Entry)
			if err != nil {
				return err
			}
			if err := bu.Put(encodeOutpointKey(ce.Point), val); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketIndex).Put(blockHash[:], indexBytes)
	}); err != nil {
		return err
	}

	m := &Manifest{
		SchemaVersion:           SchemaVersionV1,
		ChainIDHex:              d.manifest.ChainIDHex,
		TipHashHex:              hex32(blockHash),
		TipHeight:               idx.Height,
		TipCumulativeWorkDec:    idx.CumulativeWork.Text(10),
		LastAppliedBlockHashHex: hex32(blockHash),
		LastAppliedHeight:       idx.Height,
	}
	return d.SetManifest(m)
}

func (d *DB) loadAncestorHeadersForParent(parentHash [32]byte, height uint64) ([]consensus.BlockHeader, error) {
	if height == 0 {
		return nil, nil
	}
	const need11 = 11
	need := uint64(consensus.WindowSize)
	if need < need11 {
		need = need11
	}
	if height < need {
		need = height
	}
	headers := make([]consensus.BlockHeader, 0, need)
	cur := parentHash
	for i := uint64(0); i < need; i++ {
		h, ok, err := d.GetHeader(cur)
		if err != nil {
			return nil, err
		}
		if !ok || h == nil {
			return nil, fmt.Errorf("missing header for ancestor %s", hex32(cur))
		}
		headers = append(headers, *h)
		cur = h.PrevBlockHash
		if cur == ([32]byte{}) {
			break
		}
	}
	for i, j := 0, len(headers)-1; i < j; i, j = i+1, j-1 {
		headers[i], headers[j] = headers[j], headers[i]
	}
	return headers, nil
}

// InitGenesis initializes an empty chain DB by applying the genesis block.
// The genesis block's own credit-pool base snapshot is seeded as the empty
// pool at the zero hash so consensus.BuildCreditPool never needs to read a
// block that does not exist (§4.D's iterative walk stops at the first
// cached ancestor).
func (d *DB) InitGenesis(ctx *consensus.Context, verifier consensus.SpendVerifier, chainID [32]byte, genesisBlockBytes []byte) error {
	if d == nil {
		return fmt.Errorf("db: nil")
	}
	if d.manifest != nil {
		return fmt.Errorf("chain already initialized (manifest exists)")
	}
	if len(genesisBlockBytes) == 0 {
		return fmt.Errorf("genesis block bytes required")
	}

	block, err := consensus.ParseBlockBytes(genesisBlockBytes)
	if err != nil {
		return err
	}
	if block.Header.PrevBlockHash != ([32]byte{}) {
		return fmt.Errorf("genesis: prev_block_hash must be zero")
	}
	headerBytes := consensus.BlockHeaderBytes(block.Header)
	blockHash, err := consensus.BlockHash(headerBytes)
	if err != nil {
		return err
	}
	work, err := WorkFromTarget(block.Header.Target)
	if err != nil {
		return err
	}

	ctx.Snapshots.Put([32]byte{}, &consensus.CreditPoolSnapshot{Indexes: consensus.NewSkipSet(consensus.SkipSetCapacity)})

	chainIDHex := hex.EncodeToString(chainID[:])
	index := BlockIndexEntry{Height: 0, PrevHash: [32]byte{}, CumulativeWork: new(big.Int).Set(work), Status: BlockStatusUnknown}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketHeaders).Put(blockHash[:], headerBytes); err != nil {
			return err
		}
		return tx.Bucket(bucketBlocks).Put(blockHash[:], genesisBlockBytes)
	}); err != nil {
		return err
	}
	indexBytes, err := encodeIndexEntry(index)
	if err != nil {
		return err
	}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIndex).Put(blockHash[:], indexBytes)
	}); err != nil {
		return err
	}
	m := &Manifest{
		SchemaVersion:           SchemaVersionV1,
		ChainIDHex:              chainIDHex,
		TipHashHex:              hex32(blockHash),
		TipHeight:               0,
		TipCumulativeWorkDec:    work.Text(10),
		LastAppliedBlockHashHex: hex32(blockHash),
		LastAppliedHeight:       0,
	}
	d.manifest = m // ApplyBlock's BlockStore/BlockIndex views read through d; tip must be visible before connect.

	if _, err := consensus.ApplyBlock(ctx, &block, consensus.BlockValidationContext{Height: 0}, [32]byte{}); err != nil {
		d.manifest = nil
		return err
	}

	undo, created, err := validateAndDiffUTXOSet(verifier, 0, chainID, &block, map[consensus.TxOutPoint]consensus.UtxoEntry{})
	if err != nil {
		d.manifest = nil
		return err
	}

	for _, ce := range created {
		undo.Created = append(undo.Created, ce.Point)
	}

	// Deterministic iteration for persistence (stable ordering).
	sort.Slice(created, func(i, j int) bool {
		return bytes.Compare(encodeOutpointKey(created[i].Point), encodeOutpointKey(created[j].Point)) < 0
	})
	undoBytes, err := encodeUndoRecord(undo)
	if err != nil {
		return err
	}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketUndo).Put(blockHash[:], undoBytes); err != nil {
			return err
		}
		bu := tx.Bucket(bucketUtxo)
		for _, ce := range created {
			val, err := encodeUtxoEntry(ce.Entry)
			if err != nil {
				return err
			}
			if err := bu.Put(encodeOutpointKey(ce.Point), val); err != nil {
				return err
			}
		}
		index.Status = BlockStatusValid
		ib, err := encodeIndexEntry(index)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketIndex).Put(blockHash[:], ib)
	}); err != nil {
		return err
	}

	return d.SetManifest(m)
}

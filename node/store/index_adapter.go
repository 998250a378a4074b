package store

import (
	"sort"

	"github.com/dashpay/creditbridge/consensus"
)

// BlockIndexView adapts DB to consensus.BlockIndex, so the core never needs
// to know how ancestry/height bookkeeping is persisted (§6.2 collaborators).
type BlockIndexView struct {
	db *DB
}

func (d *DB) Index() *BlockIndexView { return &BlockIndexView{db: d} }

func (v *BlockIndexView) Height(hash [32]byte) (int64, bool) {
	e, ok, err := v.db.GetIndex(hash)
	if err != nil || !ok {
		return 0, false
	}
	return int64(e.Height), true // #nosec G115 -- heights fit int64 for any realistic chain length.
}

func (v *BlockIndexView) ParentHash(hash [32]byte) ([32]byte, bool) {
	e, ok, err := v.db.GetIndex(hash)
	if err != nil || !ok {
		return [32]byte{}, false
	}
	if e.Height == 0 {
		return [32]byte{}, false
	}
	return e.PrevHash, true
}

// MedianTimePast returns the median timestamp of the 11 most recent blocks
// ending at hash, the standard Bitcoin-style MTP window.
func (v *BlockIndexView) MedianTimePast(hash [32]byte) (uint64, bool) {
	const mtpWindow = 11
	timestamps := make([]uint64, 0, mtpWindow)
	cur := hash
	for i := 0; i < mtpWindow; i++ {
		h, ok, err := v.db.GetHeader(cur)
		if err != nil || !ok {
			break
		}
		timestamps = append(timestamps, h.Timestamp)
		idx, ok, err := v.db.GetIndex(cur)
		if err != nil || !ok || idx.Height == 0 {
			break
		}
		cur = idx.PrevHash
	}
	if len(timestamps) == 0 {
		return 0, false
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return timestamps[len(timestamps)/2], true
}

// AncestorAt walks back from hash to the ancestor at the given height.
func (v *BlockIndexView) AncestorAt(hash [32]byte, height int64) ([32]byte, bool) {
	e, ok, err := v.db.GetIndex(hash)
	if err != nil || !ok {
		return [32]byte{}, false
	}
	if height < 0 || uint64(height) > e.Height { // #nosec G115 -- height already checked >= 0.
		return [32]byte{}, false
	}
	cur := hash
	curHeight := e.Height
	for curHeight > uint64(height) { // #nosec G115 -- height already checked >= 0 and <= curHeight.
		idx, ok, err := v.db.GetIndex(cur)
		if err != nil || !ok {
			return [32]byte{}, false
		}
		if idx.Height == 0 {
			return [32]byte{}, false
		}
		cur = idx.PrevHash
		curHeight--
	}
	return cur, true
}

// OnActiveChain reports whether hash is an ancestor of the current manifest tip.
func (v *BlockIndexView) OnActiveChain(hash [32]byte) bool {
	m := v.db.Manifest()
	if m == nil {
		return false
	}
	tipHash, err := parseHex32(m.TipHashHex)
	if err != nil {
		return false
	}
	candidate, ok := v.AncestorAt(tipHash, mustHeight(v, hash))
	if !ok {
		return false
	}
	return candidate == hash
}

func mustHeight(v *BlockIndexView, hash [32]byte) int64 {
	h, ok := v.Height(hash)
	if !ok {
		return -1
	}
	return h
}

// BlockStoreView adapts DB to consensus.BlockStore.
type BlockStoreView struct {
	db *DB
}

func (d *DB) Store() *BlockStoreView { return &BlockStoreView{db: d} }

func (v *BlockStoreView) ReadBlock(hash [32]byte) (*consensus.Block, error) {
	b, ok, err := v.db.GetBlockBytes(hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errBlockNotFound(hash)
	}
	block, err := consensus.ParseBlockBytes(b)
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (v *BlockStoreView) ReadCoinbasePayload(hash [32]byte) (consensus.CoinbasePayload, error) {
	block, err := v.ReadBlock(hash)
	if err != nil {
		return consensus.CoinbasePayload{}, err
	}
	if len(block.Transactions) == 0 {
		return consensus.CoinbasePayload{}, errBlockNotFound(hash)
	}
	return consensus.DecodeCoinbasePayload(block.Transactions[0].ExtraPayload)
}

type blockNotFoundError struct {
	hash [32]byte
}

func (e *blockNotFoundError) Error() string {
	return "store: block not found: " + hex32(e.hash)
}

func errBlockNotFound(hash [32]byte) error {
	return &blockNotFoundError{hash: hash}
}

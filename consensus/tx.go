package consensus

// TxKind discriminates the special-transaction payload carried by a Tx's
// ExtraPayload. Standard transactions carry no payload at all.
type TxKind uint8

const (
	TxKindStandard    TxKind = 0x00
	TxKindAssetLock   TxKind = 0x01
	TxKindAssetUnlock TxKind = 0x02
)

const (
	TxVersionV1 = 1

	// P2PKHScriptLen is the canonical fixed length of a pay-to-public-key-hash
	// script: OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG.
	P2PKHScriptLen = 25
	opDup          = 0x76
	opHash160      = 0xa9
	opPushHash160  = 0x14
	opEqualVerify  = 0x88
	opCheckSig     = 0xac

	// burnOpcode marks the asset-lock burn output; it is followed by a single
	// zero byte and nothing else, mirroring an OP_RETURN with no payload.
	burnOpcode = 0x6a
	burnMarker = 0x00

	// MaxUnlockOutputs bounds the number of outputs an asset-unlock tx may carry (§4.F.2).
	MaxUnlockOutputs = 32

	// MaxTxInputs/MaxTxOutputs bound ordinary (standard) transactions.
	MaxTxInputs  = 1_024
	MaxTxOutputs = 1_024

	TxCoinbasePrevoutVout = ^uint32(0)
	CoinbaseMaturity      = 100

	// UnlockExpiryWindowBlocks (the "48" from §4.F.6) is left as an
	// unconfigured consensus constant; see SPEC_FULL.md Open Questions.
	UnlockExpiryWindowBlocks = 48

	// CreditPoolWindow is W from §3/§4.D: the horizon, in blocks, over which
	// latelyUnlocked and the withdrawal-index set are retained.
	CreditPoolWindow = 576

	// COIN is the base-unit scale used by the rate-limit constants below.
	COIN = 100_000_000

	LimitLow  = 100 * COIN
	LimitHigh = 1_000 * COIN

	// SkipSetCapacity is K, the bound on the number of exceptions a SkipSet
	// may carry before it refuses further adds (§5, Memory discipline).
	SkipSetCapacity = 10_000

	// SnapshotCacheCapacity is the LRU size of the CreditPoolSnapshot cache (§4.D).
	SnapshotCacheCapacity = 1_000

	WindowSize          = 2_016
	TargetBlockInterval = 600
	MaxFutureDrift      = 7_200
	SubsidyTotalMined   = 9_900_000_000_000_000
)

var MaxTarget = [32]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// BlockHeader is the chain header. Target is the big-endian PoW bound used
// to gate block admission; deriving it from ancestor headers is a
// collaborator's job (§6.2 BlockIndex), not this core's.
type BlockHeader struct {
	Version       uint32
	PrevBlockHash [32]byte
	MerkleRoot    [32]byte
	Timestamp     uint64
	Target        [32]byte
	Nonce         uint64
}

type Block struct {
	Header       BlockHeader
	Transactions []Tx
}

// BlockValidationContext captures chain and validation settings used by
// ApplyBlock. AncestorHeaders must be ordered from oldest to newest and
// include the parent block of Header as the last entry when available.
type BlockValidationContext struct {
	Height          uint64
	AncestorHeaders []BlockHeader
	LocalTime       uint64
	LocalTimeSet    bool
}

// TxOutPoint identifies a previous output being spent.
type TxOutPoint struct {
	TxID [32]byte
	Vout uint32
}

// TxInput spends a previous output. Asset-unlock transactions MUST have none (§4.F.1).
type TxInput struct {
	PrevTxid  [32]byte
	PrevVout  uint32
	ScriptSig []byte
	Sequence  uint32
}

// TxOutput is a P2PKH-shaped spendable output, or the single burn output of
// an asset-lock transaction (Script == burn marker, see IsBurnScript).
type TxOutput struct {
	Value  uint64
	Script []byte
}

// UtxoEntry is a spendable output plus the chain-height metadata needed to
// enforce coinbase maturity.
type UtxoEntry struct {
	Output            TxOutput
	CreationHeight    uint64
	CreatedByCoinbase bool
}

// WitnessItem authorizes one TxInput of an ordinary P2PKH spend.
type WitnessItem struct {
	Pubkey    []byte
	Signature []byte
}

type WitnessSection struct {
	Witnesses []WitnessItem
}

// Tx is the transaction wrapper of spec.md §3: a discriminant plus an
// opaque extra_payload that the codec (component A) parses iff Kind matches.
type Tx struct {
	Version uint32
	Kind    TxKind

	TxNonce  uint64
	Inputs   []TxInput
	Outputs  []TxOutput
	Locktime uint32

	// ExtraPayload is the opaque special-transaction payload. It is empty
	// for TxKindStandard, and holds the encoded AssetLockPayload /
	// AssetUnlockPayload otherwise.
	ExtraPayload []byte

	Witness WitnessSection
}

// IsBurnScript reports whether s is the canonical asset-lock burn marker:
// the burn opcode followed by a single zero byte, and nothing else (§4.E).
func IsBurnScript(s []byte) bool {
	return len(s) == 2 && s[0] == burnOpcode && s[1] == burnMarker
}

// IsP2PKHScript reports whether s has the canonical fixed P2PKH shape.
func IsP2PKHScript(s []byte) bool {
	return len(s) == P2PKHScriptLen &&
		s[0] == opDup && s[1] == opHash160 && s[2] == opPushHash160 &&
		s[23] == opEqualVerify && s[24] == opCheckSig
}

// MakeP2PKHScript builds the canonical P2PKH script for a 20-byte key hash.
func MakeP2PKHScript(keyHash [20]byte) []byte {
	out := make([]byte, 0, P2PKHScriptLen)
	out = append(out, opDup, opHash160, opPushHash160)
	out = append(out, keyHash[:]...)
	out = append(out, opEqualVerify, opCheckSig)
	return out
}

// MakeBurnScript builds the canonical asset-lock burn output script.
func MakeBurnScript() []byte {
	return []byte{burnOpcode, burnMarker}
}

// ScriptPubKeyHash extracts the 20-byte key hash from a P2PKH script. The
// caller must have already confirmed IsP2PKHScript(s).
func ScriptPubKeyHash(s []byte) [20]byte {
	var out [20]byte
	copy(out[:], s[3:23])
	return out
}

func isZeroOutPoint(p TxOutPoint) bool {
	return p.TxID == ([32]byte{}) && p.Vout == TxCoinbasePrevoutVout
}

// isCoinbaseTx reports whether tx is the block's coinbase: exactly one
// input referencing the zero outpoint, empty ScriptSig, and no witnesses.
func isCoinbaseTx(tx *Tx) bool {
	if tx == nil || tx.Kind != TxKindStandard || len(tx.Inputs) != 1 || len(tx.Witness.Witnesses) != 0 {
		return false
	}
	in := tx.Inputs[0]
	return isZeroOutPoint(TxOutPoint{TxID: in.PrevTxid, Vout: in.PrevVout}) && len(in.ScriptSig) == 0
}

// IsCoinbaseTx exports isCoinbaseTx for callers outside this package (the
// persistent-store layer needs the same coinbase test when maintaining its
// UTXO set alongside ApplyBlock's credit-pool accounting).
func IsCoinbaseTx(tx *Tx) bool {
	return isCoinbaseTx(tx)
}

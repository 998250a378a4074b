package consensus

// BlockIndex is the chain-index collaborator the core consumes (§6.2): it
// answers ancestry and timing questions about blocks already known to the
// node, without this package needing to know how they are stored.
type BlockIndex interface {
	Height(hash [32]byte) (int64, bool)
	ParentHash(hash [32]byte) ([32]byte, bool)
	MedianTimePast(hash [32]byte) (uint64, bool)
	// AncestorAt returns the hash of the ancestor of hash at the given
	// height, or false if hash is not yet known at that depth.
	AncestorAt(hash [32]byte, height int64) ([32]byte, bool)
	// OnActiveChain reports whether hash is an ancestor of the current tip.
	OnActiveChain(hash [32]byte) bool
}

// BlockStore is the persistent-store collaborator the core consumes
// (§6.2): it reads block bodies and coinbase payloads, both already
// validated and durable.
type BlockStore interface {
	ReadBlock(hash [32]byte) (*Block, error)
	ReadCoinbasePayload(hash [32]byte) (CoinbasePayload, error)
}

// Quorum is a long-lived committee identified by hash, with an aggregate
// BLS public key (§6.2, GLOSSARY).
type Quorum struct {
	Hash      [32]byte
	Type      uint32
	PublicKey [48]byte // compressed BLS12-381 G1 point, min-pk scheme
}

// QuorumManager is the quorum-lookup collaborator the core consumes
// (§6.2): "active" means one of the most recent two quorums of a type.
type QuorumManager interface {
	ScanQuorums(quorumType uint32, tip [32]byte, n int) ([]Quorum, error)
	GetQuorum(quorumType uint32, hash [32]byte) (Quorum, error)
}

// LLMQParams describes one long-lived masternode quorum type's size and
// signing threshold.
type LLMQParams struct {
	Size      int
	Threshold int
}

// ChainParams is the network-parameters collaborator the core consumes
// (§6.2).
type ChainParams interface {
	AssetLocksQuorumType() uint32
	LLMQParams(quorumType uint32) (LLMQParams, error)
}

// Context wires the collaborators together and is constructed once at
// node start, then passed explicitly to every validator and builder call
// (§9 "Global singletons" — no package-level state replaces the source's
// process-wide creditPoolManager/quorumManager singletons).
type Context struct {
	Index       BlockIndex
	Store       BlockStore
	Quorums     QuorumManager
	Params      ChainParams
	Snapshots   *SnapshotCache
	BLSVerifier BLSVerifier
}

// BLSVerifier abstracts the threshold-signature backend UnlockValidator
// uses for the quorum gauntlet (§4.F.6), so consensus does not import a
// concrete crypto library directly.
type BLSVerifier interface {
	Verify(pubkey [48]byte, message [32]byte, signature [96]byte) bool
}

// SpendVerifier abstracts the single-key signature backend ordinary P2PKH
// inputs are checked against, mirroring the CryptoProvider/verifySig split
// the bridge-specific validators use for BLS (§6.2 collaborators).
type SpendVerifier interface {
	Verify(pubkey []byte, message [32]byte, signature []byte) bool
}

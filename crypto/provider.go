package crypto

// CryptoProvider is the narrow crypto interface consensus-adjacent code
// consumes. Implementations may provide a wolfCrypt-backed or a native Go
// backend. The two verification methods back the consensus.BLSVerifier and
// consensus.SpendVerifier interfaces via the adapters in this package.
type CryptoProvider interface {
	SHA3_256(input []byte) ([32]byte, error)
	VerifyBLS12381(pubkey []byte, sig []byte, digest32 [32]byte) bool
	VerifyEd25519(pubkey []byte, sig []byte, digest32 [32]byte) bool
}

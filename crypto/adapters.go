package crypto

import "github.com/dashpay/creditbridge/consensus"

// BLSAdapter satisfies consensus.BLSVerifier over a fixed-arity CryptoProvider
// verification method, so the consensus package never imports a concrete
// pairing-crypto library directly (§6.2 collaborators).
type BLSAdapter struct {
	Provider CryptoProvider
}

func (a BLSAdapter) Verify(pubkey [48]byte, message [32]byte, signature [96]byte) bool {
	return a.Provider.VerifyBLS12381(pubkey[:], signature[:], message)
}

// Ed25519Adapter satisfies consensus.SpendVerifier for ordinary P2PKH
// inputs over the same CryptoProvider abstraction.
type Ed25519Adapter struct {
	Provider CryptoProvider
}

func (a Ed25519Adapter) Verify(pubkey []byte, message [32]byte, signature []byte) bool {
	return a.Provider.VerifyEd25519(pubkey, signature, message)
}

var (
	_ consensus.BLSVerifier   = BLSAdapter{}
	_ consensus.SpendVerifier = Ed25519Adapter{}
)

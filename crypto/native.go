package crypto

import (
	"crypto/ed25519"

	blst "github.com/supranational/blst/bindings/go"
	"golang.org/x/crypto/sha3"
)

// blsDST is the domain-separation tag for the min-pk BLS12-381 scheme used
// by the quorum signature gauntlet, mirroring the "CREDITBRIDGEv1-" prefix
// convention the consensus package uses for its own hash domains.
var blsDST = []byte("CREDITBRIDGEv1-BLS-SIG-MINPK-")

// NativeCryptoProvider implements CryptoProvider with in-process primitives:
// golang.org/x/crypto/sha3 for hashing, github.com/supranational/blst for
// the quorum threshold signature scheme, and stdlib ed25519 for ordinary
// P2PKH spends. This is the default production provider when no wolfCrypt
// shim is configured.
type NativeCryptoProvider struct{}

func (p NativeCryptoProvider) SHA3_256(input []byte) ([32]byte, error) {
	h := sha3.New256()
	_, _ = h.Write(input)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// VerifyBLS12381 verifies a min-pk BLS12-381 signature: pubkey is a
// compressed 48-byte G1 point, sig a compressed 96-byte G2 point.
func (p NativeCryptoProvider) VerifyBLS12381(pubkey []byte, sig []byte, digest32 [32]byte) bool {
	if len(pubkey) != 48 || len(sig) != 96 {
		return false
	}
	pk := new(blst.P1Affine).Uncompress(pubkey)
	if pk == nil {
		return false
	}
	signature := new(blst.P2Affine).Uncompress(sig)
	if signature == nil {
		return false
	}
	return signature.Verify(true, pk, true, digest32[:], blsDST)
}

// VerifyEd25519 verifies an ordinary ed25519 P2PKH spend signature.
func (p NativeCryptoProvider) VerifyEd25519(pubkey []byte, sig []byte, digest32 [32]byte) bool {
	if len(pubkey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), digest32[:], sig)
}

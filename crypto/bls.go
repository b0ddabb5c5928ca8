// BLS12-381 signature verification via the supranational/blst library.
//
// The sync-committee verifier uses the "MinPk" scheme from the Ethereum
// consensus layer:
//   - Public keys in G1 (48-byte compressed P1Affine)
//   - Signatures in G2 (96-byte compressed P2Affine)
//   - DST: BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_
package crypto

import (
	"errors"
	"fmt"

	blst "github.com/supranational/blst/bindings/go"
)

// blsDST is the domain separation tag for Ethereum BLS signatures.
var blsDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// Key and signature sizes for the MinPk scheme.
const (
	BLSPubkeySize    = 48 // compressed G1
	BLSSignatureSize = 96 // compressed G2
	blsSecretSize    = 32 // scalar field element
)

// Errors returned by the BLS helpers.
var (
	ErrBLSInvalidIKM       = errors.New("crypto: IKM must be at least 32 bytes")
	ErrBLSKeyGenFailed     = errors.New("crypto: BLS key generation failed")
	ErrBLSInvalidSecretKey = errors.New("crypto: invalid BLS secret key bytes")
	ErrBLSSignFailed       = errors.New("crypto: BLS signing failed")
	ErrBLSNoSignatures     = errors.New("crypto: no signatures to aggregate")
	ErrBLSInvalidPubkey    = errors.New("crypto: invalid BLS public key bytes")
	ErrBLSAggregateFailed  = errors.New("crypto: BLS signature aggregation failed")
)

// BLSPubkey is a deserialized G1 public key, ready for aggregate
// verification without repeated decompression.
type BLSPubkey = blst.P1Affine

// DecompressPubkey decompresses a 48-byte G1 public key and checks it is in
// the correct subgroup. The returned point can be reused across many
// FastAggregateVerify calls.
func DecompressPubkey(pk []byte) (*BLSPubkey, error) {
	if len(pk) != BLSPubkeySize {
		return nil, ErrBLSInvalidPubkey
	}
	p := new(blst.P1Affine).Uncompress(pk)
	if p == nil || !p.KeyValidate() {
		return nil, ErrBLSInvalidPubkey
	}
	return p, nil
}

// BLSVerify checks a single BLS signature. pubkey must be 48-byte compressed
// G1, sig must be 96-byte compressed G2.
func BLSVerify(pubkey, msg, sig []byte) bool {
	if len(pubkey) == 0 || len(sig) == 0 {
		return false
	}

	pk := new(blst.P1Affine).Uncompress(pubkey)
	if pk == nil {
		return false
	}

	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}

	return s.Verify(true, pk, true, msg, blsDST)
}

// BLSFastAggregateVerify checks an aggregate signature where all signers
// signed the same message, using pre-deserialized public keys. This is the
// hot path for sync-aggregate verification.
func BLSFastAggregateVerify(pubkeys []*BLSPubkey, msg, sig []byte) bool {
	if len(pubkeys) == 0 || len(sig) == 0 {
		return false
	}

	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}

	return s.FastAggregateVerify(true, pubkeys, msg, blsDST)
}

// BLSFastAggregateVerifyCompressed is the compressed-key variant of
// BLSFastAggregateVerify. Any undecodable key fails the verification.
func BLSFastAggregateVerifyCompressed(pubkeys [][]byte, msg, sig []byte) bool {
	n := len(pubkeys)
	if n == 0 {
		return false
	}

	pks := make([]*blst.P1Affine, n)
	for i, pkBytes := range pubkeys {
		pks[i] = new(blst.P1Affine).Uncompress(pkBytes)
		if pks[i] == nil {
			return false
		}
	}

	return BLSFastAggregateVerify(pks, msg, sig)
}

// --- Helper functions, used to build signing fixtures ---

// BLSKeyGen generates a BLS key pair from input key material (IKM).
// IKM must be at least 32 bytes. Returns compressed public key (48 bytes)
// and serialized secret key (32 bytes).
func BLSKeyGen(ikm []byte) (pubkey, secretKey []byte, err error) {
	if len(ikm) < 32 {
		return nil, nil, ErrBLSInvalidIKM
	}

	sk := blst.KeyGen(ikm)
	if sk == nil {
		return nil, nil, ErrBLSKeyGenFailed
	}

	pk := new(blst.P1Affine).From(sk)
	pubkey = pk.Compress()
	secretKey = sk.Serialize()
	return pubkey, secretKey, nil
}

// BLSSign signs a message using the given secret key bytes (32 bytes).
// Returns the compressed signature (96 bytes).
func BLSSign(secretKey, msg []byte) ([]byte, error) {
	if len(secretKey) != blsSecretSize {
		return nil, ErrBLSInvalidSecretKey
	}

	sk := new(blst.SecretKey).Deserialize(secretKey)
	if sk == nil {
		return nil, ErrBLSInvalidSecretKey
	}

	sig := new(blst.P2Affine).Sign(sk, msg, blsDST)
	if sig == nil {
		return nil, ErrBLSSignFailed
	}

	return sig.Compress(), nil
}

// BLSAggregateSignatures aggregates multiple compressed signatures (each 96
// bytes) into a single compressed aggregate signature.
func BLSAggregateSignatures(sigs [][]byte) ([]byte, error) {
	if len(sigs) == 0 {
		return nil, ErrBLSNoSignatures
	}

	agg := new(blst.P2Aggregate)
	if !agg.AggregateCompressed(sigs, true) {
		return nil, ErrBLSAggregateFailed
	}

	return agg.ToAffine().Compress(), nil
}

// BLSGenKeyPair is a convenience for tests: generates a key pair from IKM,
// panicking on failure.
func BLSGenKeyPair(ikm []byte) (pk, sk []byte) {
	pubkey, secretKey, err := BLSKeyGen(ikm)
	if err != nil {
		panic(fmt.Sprintf("BLSGenKeyPair: %v", err))
	}
	return pubkey, secretKey
}

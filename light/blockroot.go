package light

import (
	"fmt"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/lightproof/lightproof/crypto"
	"github.com/lightproof/lightproof/metrics"
	"github.com/lightproof/lightproof/ssz"
	"github.com/lightproof/lightproof/types"
)

// signingRootCacheSize is the number of recently verified signing roots a
// verifier remembers. A hit skips committee resolution and the pairing
// check entirely.
const signingRootCacheSize = 10

// BlockrootVerifier checks that a beacon header, or a header it is
// merkle-linked to, carries a valid sync committee aggregate signature.
// It is session-scoped: the verified-root ring lives on the verifier, not
// in process-global state.
type BlockrootVerifier struct {
	spec  *ChainSpec
	store *CommitteeStore

	ring    [signingRootCacheSize][32]byte
	ringPos int
}

// NewBlockrootVerifier creates a verifier backed by the given committee
// store.
func NewBlockrootVerifier(store *CommitteeStore) *BlockrootVerifier {
	return &BlockrootVerifier{spec: store.Spec(), store: store}
}

// VerifyBlockroot verifies the given header against a blockroot proof.
// The proof shape decides how the header is reduced to a signed header
// before the signature itself is checked.
func (v *BlockrootVerifier) VerifyBlockroot(header *BeaconHeader, proof *BlockrootProof) error {
	switch proof.Kind {
	case ProofKindDirect:
		return v.verifySignature(header, proof.SyncBits, proof.Signature, 0)

	case ProofKindHeaderChain:
		if len(proof.Headers) > MaxHeaderChain {
			return fmt.Errorf("%w: header chain too long", ErrInvalidProof)
		}
		// Each compressed header omits its parent root; re-derive it from
		// the previous hop's hash tree root.
		last := header.HashTreeRoot()
		for i := range proof.Headers {
			full := proof.Headers[i].Expand(types.Hash(last))
			last = full.HashTreeRoot()
		}
		if proof.SignedHeader.ParentRoot != last {
			return fmt.Errorf("%w: header chain does not reach signed header", ErrInvalidProof)
		}
		return v.verifySignature(&proof.SignedHeader, proof.SyncBits, proof.Signature, 0)

	case ProofKindHistoric:
		blockRoot := header.HashTreeRoot()
		if !ssz.VerifyProof(proof.Branch, blockRoot, proof.Gindex, proof.SignedHeader.StateRoot) {
			return fmt.Errorf("%w: invalid historic block root branch", ErrInvalidProof)
		}
		return v.verifySignature(&proof.SignedHeader, proof.SyncBits, proof.Signature, 0)

	default:
		return fmt.Errorf("%w: unknown proof kind %d", ErrInvalidProof, proof.Kind)
	}
}

// verifySignature checks the aggregate over the signed header. A zero slot
// means the signature was produced for the slot after the header's own,
// the usual case for direct proofs. On failure the previous period's
// committee is tried once: finality can be delayed at a period boundary
// while the old committee keys still sign.
func (v *BlockrootVerifier) verifySignature(header *BeaconHeader, bits bitfield.Bitvector512, sig []byte, slot uint64) error {
	if slot == 0 {
		slot = header.Slot + 1
	}
	if !hasQuorum(bits) {
		return fmt.Errorf("%w: insufficient sync committee participation", ErrInvalidProof)
	}

	signingRoot := v.spec.SigningRootForHeader(header, slot)
	if v.alreadyVerified(signingRoot) {
		metrics.BlockrootCacheHits.Inc()
		return nil
	}
	defer metrics.NewTimer(metrics.BlockrootVerifyTime).Stop()

	period := v.spec.PeriodForSlot(slot)
	ok, err := v.verifyWithPeriod(period, bits, signingRoot, sig)
	if !ok && period > 0 {
		ok, _ = v.verifyWithPeriod(period-1, bits, signingRoot, sig)
	}
	if !ok {
		// An incomplete resolution of the signature's own period is never a
		// proof failure; the caller retries once the period is available.
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: invalid blockroot signature", ErrInvalidProof)
	}
	v.remember(signingRoot)
	metrics.BlockrootsVerified.Inc()
	return nil
}

func (v *BlockrootVerifier) verifyWithPeriod(period uint32, bits bitfield.Bitvector512, msg [32]byte, sig []byte) (bool, error) {
	rec, err := v.store.Validators(period)
	if err != nil {
		return false, err
	}
	points, err := rec.Points()
	if err != nil {
		return false, fmt.Errorf("%w: corrupt pubkeys for period %d", ErrIntegrity, period)
	}
	return crypto.BLSFastAggregateVerify(participants(points, bits), msg[:], sig), nil
}

func (v *BlockrootVerifier) alreadyVerified(root [32]byte) bool {
	for i := range v.ring {
		if v.ring[i] == root {
			return true
		}
	}
	return false
}

func (v *BlockrootVerifier) remember(root [32]byte) {
	v.ring[v.ringPos] = root
	v.ringPos = (v.ringPos + 1) % signingRootCacheSize
}

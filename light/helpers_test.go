package light

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/lightproof/lightproof/crypto"
	"github.com/lightproof/lightproof/ssz"
	"github.com/lightproof/lightproof/types"
)

// Slots on mainnet chosen inside the Deneb fork window.
const (
	denebSlot   = uint64(8626176) // epoch 269568
	electraSlot = uint64(11649024)
)

// testCommittee is a deterministic 512-validator committee.
type testCommittee struct {
	secrets [][]byte
	pubkeys []byte
}

var (
	committeeMu    sync.Mutex
	committeeCache = make(map[uint32]*testCommittee)
)

// committeeForPeriod derives a deterministic committee keyed by period.
// Committees are cached across tests; key generation for 512 validators is
// not free.
func committeeForPeriod(t *testing.T, period uint32) *testCommittee {
	t.Helper()
	committeeMu.Lock()
	defer committeeMu.Unlock()
	if c, ok := committeeCache[period]; ok {
		return c
	}
	c := &testCommittee{secrets: make([][]byte, CommitteeSize)}
	for i := 0; i < CommitteeSize; i++ {
		ikm := make([]byte, 32)
		binary.LittleEndian.PutUint32(ikm, period)
		binary.LittleEndian.PutUint32(ikm[8:], uint32(i))
		pk, sk, err := crypto.BLSKeyGen(ikm)
		if err != nil {
			t.Fatalf("BLSKeyGen(%d, %d) failed: %v", period, i, err)
		}
		c.secrets[i] = sk
		c.pubkeys = append(c.pubkeys, pk...)
	}
	committeeCache[period] = c
	return c
}

// sign produces the aggregate signature of all participants over msg.
func (c *testCommittee) sign(t *testing.T, msg [32]byte, bits bitfield.Bitvector512) []byte {
	t.Helper()
	var sigs [][]byte
	for i := uint64(0); i < CommitteeSize; i++ {
		if !bits.BitAt(i) {
			continue
		}
		sig, err := crypto.BLSSign(c.secrets[i], msg[:])
		if err != nil {
			t.Fatalf("BLSSign failed: %v", err)
		}
		sigs = append(sigs, sig)
	}
	agg, err := crypto.BLSAggregateSignatures(sigs)
	if err != nil {
		t.Fatalf("BLSAggregateSignatures failed: %v", err)
	}
	return agg
}

func fullBits() bitfield.Bitvector512 {
	bits := bitfield.NewBitvector512()
	for i := uint64(0); i < CommitteeSize; i++ {
		bits.SetBitAt(i, true)
	}
	return bits
}

// rootFromBranch folds a leaf up through sibling witnesses, producing the
// root that makes the branch verify at the given gindex.
func rootFromBranch(leaf [32]byte, g ssz.Gindex, branch [][32]byte) [32]byte {
	node := leaf
	for _, w := range branch {
		if g.IsLeft() {
			node = crypto.HashPair(node, w)
		} else {
			node = crypto.HashPair(w, node)
		}
		g = g.Parent()
	}
	return node
}

func testBranch(depth int) [][32]byte {
	branch := make([][32]byte, depth)
	for i := range branch {
		branch[i] = [32]byte{byte(i + 1)}
	}
	return branch
}

// makeBootstrap builds a bootstrap for the committee at the given slot
// whose branch verifies against the constructed header's state root.
func makeBootstrap(t *testing.T, spec *ChainSpec, committee *testCommittee, slot uint64) *Bootstrap {
	t.Helper()
	var aggregate [48]byte
	committeeRoot, err := CommitteeRoot(committee.pubkeys, aggregate)
	if err != nil {
		t.Fatalf("CommitteeRoot failed: %v", err)
	}
	fork := spec.ForkAtEpoch(spec.EpochForSlot(slot))
	gindex := currentCommitteeGindex(fork)
	branch := testBranch(gindex.Depth())
	return &Bootstrap{
		Header: BeaconHeader{
			Slot:          slot,
			ProposerIndex: 7,
			ParentRoot:    types.Hash{0xaa},
			StateRoot:     rootFromBranch(committeeRoot, gindex, branch),
			BodyRoot:      types.Hash{0xbb},
		},
		CommitteePubkeys: committee.pubkeys,
		CommitteeBranch:  branch,
	}
}

// makeUpdate builds a verifiable update: the attested header commits to
// the next committee and the signer committee signs the attested header at
// the signature slot.
func makeUpdate(t *testing.T, spec *ChainSpec, signer, next *testCommittee, attestedSlot, signatureSlot uint64) *Update {
	t.Helper()
	var aggregate [48]byte
	committeeRoot, err := CommitteeRoot(next.pubkeys, aggregate)
	if err != nil {
		t.Fatalf("CommitteeRoot failed: %v", err)
	}
	fork := spec.ForkAtEpoch(spec.EpochForSlot(attestedSlot))
	gindex := nextCommitteeGindex(fork)
	branch := testBranch(gindex.Depth())

	u := &Update{
		AttestedHeader: BeaconHeader{
			Slot:          attestedSlot,
			ProposerIndex: 3,
			ParentRoot:    types.Hash{0x01},
			StateRoot:     rootFromBranch(committeeRoot, gindex, branch),
			BodyRoot:      types.Hash{0x02},
		},
		NextCommitteePubkeys: next.pubkeys,
		NextCommitteeBranch:  branch,
		FinalizedHeader:      BeaconHeader{Slot: attestedSlot - 64},
		FinalityBranch:       testBranch(gindex.Depth() + 1),
		SyncBits:             fullBits(),
		SignatureSlot:        signatureSlot,
	}
	signingRoot := spec.SigningRootForHeader(&u.AttestedHeader, signatureSlot)
	u.SyncCommitteeSignature = signer.sign(t, signingRoot, u.SyncBits)
	return u
}

// seedPeriod installs a trusted record directly, bypassing network sync.
func seedPeriod(storage Storage, spec *ChainSpec, rec *PeriodRecord) {
	storage.Set(periodKey(spec.ChainID, rec.Period), rec.Encode())
	state := DecodeSyncState(func() []byte {
		data, _ := storage.Get(stateKey(spec.ChainID))
		return data
	}())
	state.addPeriod(rec.Period)
	storage.Set(stateKey(spec.ChainID), EncodeSyncState(state))
}

func newTestStore(t *testing.T, cfg StoreConfig) (*CommitteeStore, *MemoryBroker, *MemoryStorage) {
	t.Helper()
	broker := NewMemoryBroker()
	storage := NewMemoryStorage()
	store, err := NewCommitteeStore(1, broker, storage, cfg)
	if err != nil {
		t.Fatalf("NewCommitteeStore(1) failed: %v", err)
	}
	return store, broker, storage
}

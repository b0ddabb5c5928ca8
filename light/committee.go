package light

import (
	"github.com/lightproof/lightproof/crypto"
	"github.com/lightproof/lightproof/ssz"
)

// Sync committee constants.
const (
	// CommitteeSize is the number of validators in a sync committee.
	CommitteeSize = 512

	// CommitteePubkeysSize is the serialized size of all committee pubkeys.
	CommitteePubkeysSize = CommitteeSize * crypto.BLSPubkeySize

	// periodRecordSize is CommitteePubkeysSize plus the 32-byte hash of
	// the previous period's pubkeys.
	periodRecordSize = CommitteePubkeysSize + 32
)

// Committee branch generalized indices into the beacon state, per fork.
func currentCommitteeGindex(fork Fork) ssz.Gindex {
	if fork >= ForkElectra {
		return 86
	}
	return 54
}

func nextCommitteeGindex(fork Fork) ssz.Gindex {
	if fork >= ForkElectra {
		return 87
	}
	return 55
}

// PeriodRecord is the trusted validator set for one sync committee period.
// PreviousPubkeysHash is the sha256 of the previous period's raw pubkeys;
// it is zero for records whose predecessor was unknown at save time
// (bootstrap and fallback-recovered records).
type PeriodRecord struct {
	Period              uint32
	Pubkeys             []byte
	PreviousPubkeysHash [32]byte

	points []*crypto.BLSPubkey
}

// Encode serializes the record as raw pubkeys followed by the previous
// pubkeys hash.
func (r *PeriodRecord) Encode() []byte {
	buf := make([]byte, 0, periodRecordSize)
	buf = append(buf, r.Pubkeys...)
	buf = append(buf, r.PreviousPubkeysHash[:]...)
	return buf
}

// DecodePeriodRecord parses a stored period record.
func DecodePeriodRecord(period uint32, data []byte) (*PeriodRecord, error) {
	if len(data) != periodRecordSize {
		return nil, ErrIntegrity
	}
	r := &PeriodRecord{Period: period, Pubkeys: data[:CommitteePubkeysSize]}
	copy(r.PreviousPubkeysHash[:], data[CommitteePubkeysSize:])
	return r, nil
}

// Points returns the committee pubkeys as decompressed curve points,
// deserializing them on first use.
func (r *PeriodRecord) Points() ([]*crypto.BLSPubkey, error) {
	if r.points != nil {
		return r.points, nil
	}
	points := make([]*crypto.BLSPubkey, CommitteeSize)
	for i := 0; i < CommitteeSize; i++ {
		pk, err := crypto.DecompressPubkey(r.Pubkeys[i*crypto.BLSPubkeySize : (i+1)*crypto.BLSPubkeySize])
		if err != nil {
			return nil, err
		}
		points[i] = pk
	}
	r.points = points
	return points, nil
}

// CommitteePubkeysHash hashes a committee's raw pubkeys. This is the value
// stored as the next period's PreviousPubkeysHash and compared during the
// delayed-finality fallback.
func CommitteePubkeysHash(pubkeys []byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Sha256(pubkeys))
	return out
}

// CommitteeRoot computes the SSZ hash tree root of a sync committee
// container: a 512-element pubkey vector plus the aggregate pubkey.
func CommitteeRoot(pubkeys []byte, aggregate [48]byte) ([32]byte, error) {
	if len(pubkeys) != CommitteePubkeysSize {
		return [32]byte{}, ErrInvalidProof
	}
	roots := make([][32]byte, CommitteeSize)
	for i := 0; i < CommitteeSize; i++ {
		var pk [48]byte
		copy(pk[:], pubkeys[i*crypto.BLSPubkeySize:])
		roots[i] = ssz.HashTreeRootBytes48(pk)
	}
	pubkeysRoot := ssz.Merkleize(roots, CommitteeSize)
	return ssz.HashTreeRootContainer([][32]byte{pubkeysRoot, ssz.HashTreeRootBytes48(aggregate)}), nil
}

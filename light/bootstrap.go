package light

import (
	"encoding/binary"
)

// Bootstrap is a light client bootstrap: a checkpoint header together with
// the current sync committee and its inclusion branch against the header's
// state root.
type Bootstrap struct {
	Header             BeaconHeader
	CommitteePubkeys   []byte
	CommitteeAggregate [48]byte
	CommitteeBranch    [][32]byte
}

func bootstrapSize(branchDepth int) int {
	return HeaderSize + CommitteePubkeysSize + 48 + branchDepth*32
}

// Encode serializes the bootstrap into its fixed-size wire form.
func (b *Bootstrap) Encode() []byte {
	buf := make([]byte, 0, bootstrapSize(len(b.CommitteeBranch)))
	buf = append(buf, b.Header.Encode()...)
	buf = append(buf, b.CommitteePubkeys...)
	buf = append(buf, b.CommitteeAggregate[:]...)
	for _, h := range b.CommitteeBranch {
		buf = append(buf, h[:]...)
	}
	return buf
}

// DecodeBootstrap parses a bootstrap response. The branch depth follows the
// fork active at the header's slot.
func DecodeBootstrap(spec *ChainSpec, data []byte) (*Bootstrap, error) {
	if len(data) < HeaderSize {
		return nil, ErrInvalidProof
	}
	slot := binary.LittleEndian.Uint64(data[0:8])
	fork := spec.ForkAtEpoch(spec.EpochForSlot(slot))
	depth := currentCommitteeGindex(fork).Depth()
	if len(data) != bootstrapSize(depth) {
		return nil, ErrInvalidProof
	}

	b := new(Bootstrap)
	var err error
	pos := 0
	if b.Header, err = DecodeHeader(data[pos : pos+HeaderSize]); err != nil {
		return nil, err
	}
	pos += HeaderSize
	b.CommitteePubkeys = data[pos : pos+CommitteePubkeysSize]
	pos += CommitteePubkeysSize
	copy(b.CommitteeAggregate[:], data[pos:pos+48])
	pos += 48
	b.CommitteeBranch = readBranch(data, &pos, depth)
	return b, nil
}

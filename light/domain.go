package light

import (
	"github.com/lightproof/lightproof/ssz"
)

// domainTypeSyncCommittee is the 4-byte domain separator for sync
// committee signatures.
var domainTypeSyncCommittee = [4]byte{0x07, 0x00, 0x00, 0x00}

// ComputeForkDataRoot hashes a fork version together with the genesis
// validators root, forming the base of the signing domain.
func ComputeForkDataRoot(version [4]byte, genesisValidatorsRoot [32]byte) [32]byte {
	var versionChunk [32]byte
	copy(versionChunk[:4], version[:])
	return ssz.HashTreeRootContainer([][32]byte{versionChunk, genesisValidatorsRoot})
}

// ComputeDomain derives the sync committee signing domain for a slot. The
// fork version is taken at the epoch of slot-1: a signature over a block
// at the first slot of a fork is still produced under the previous fork's
// domain.
func (s *ChainSpec) ComputeDomain(slot uint64) [32]byte {
	fork := s.ForkAtEpoch(s.EpochForSlot(slot - 1))
	forkDataRoot := ComputeForkDataRoot(s.ForkVersion(fork), s.GenesisValidatorsRoot)

	var domain [32]byte
	copy(domain[:4], domainTypeSyncCommittee[:])
	copy(domain[4:], forkDataRoot[:28])
	return domain
}

// ComputeSigningRoot binds a block root to a domain, producing the message
// actually signed by the sync committee.
func ComputeSigningRoot(blockRoot [32]byte, domain [32]byte) [32]byte {
	return ssz.HashTreeRootContainer([][32]byte{blockRoot, domain})
}

// SigningRootForHeader computes the signing root for a header signed at the
// given slot.
func (s *ChainSpec) SigningRootForHeader(header *BeaconHeader, slot uint64) [32]byte {
	return ComputeSigningRoot(header.HashTreeRoot(), s.ComputeDomain(slot))
}

package light

import (
	"encoding/binary"

	"github.com/lightproof/lightproof/ssz"
	"github.com/lightproof/lightproof/types"
)

// Header sizes on the wire.
const (
	// HeaderSize is the SSZ size of a full beacon block header.
	HeaderSize = 112

	// CompressedHeaderSize is the size of a header with the parent root
	// omitted. The parent root is re-derived hop by hop when walking a
	// header chain, so carrying it would be redundant.
	CompressedHeaderSize = 80
)

// BeaconHeader is the consensus layer block header.
type BeaconHeader struct {
	Slot          uint64
	ProposerIndex uint64
	ParentRoot    types.Hash
	StateRoot     types.Hash
	BodyRoot      types.Hash
}

// Encode serializes the header into its 112-byte SSZ form.
func (h *BeaconHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.Slot)
	binary.LittleEndian.PutUint64(buf[8:16], h.ProposerIndex)
	copy(buf[16:48], h.ParentRoot[:])
	copy(buf[48:80], h.StateRoot[:])
	copy(buf[80:112], h.BodyRoot[:])
	return buf
}

// DecodeHeader parses a 112-byte SSZ beacon block header.
func DecodeHeader(data []byte) (BeaconHeader, error) {
	var h BeaconHeader
	if len(data) != HeaderSize {
		return h, ErrInvalidProof
	}
	h.Slot = binary.LittleEndian.Uint64(data[0:8])
	h.ProposerIndex = binary.LittleEndian.Uint64(data[8:16])
	copy(h.ParentRoot[:], data[16:48])
	copy(h.StateRoot[:], data[48:80])
	copy(h.BodyRoot[:], data[80:112])
	return h, nil
}

// HashTreeRoot computes the SSZ hash tree root of the header.
func (h *BeaconHeader) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootContainer([][32]byte{
		ssz.HashTreeRootUint64(h.Slot),
		ssz.HashTreeRootUint64(h.ProposerIndex),
		h.ParentRoot,
		h.StateRoot,
		h.BodyRoot,
	})
}

// CompressedHeader is a header without its parent root.
type CompressedHeader struct {
	Slot          uint64
	ProposerIndex uint64
	StateRoot     types.Hash
	BodyRoot      types.Hash
}

// Encode serializes the compressed header into its 80-byte form.
func (h *CompressedHeader) Encode() []byte {
	buf := make([]byte, CompressedHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.Slot)
	binary.LittleEndian.PutUint64(buf[8:16], h.ProposerIndex)
	copy(buf[16:48], h.StateRoot[:])
	copy(buf[48:80], h.BodyRoot[:])
	return buf
}

// DecodeCompressedHeader parses an 80-byte compressed header.
func DecodeCompressedHeader(data []byte) (CompressedHeader, error) {
	var h CompressedHeader
	if len(data) != CompressedHeaderSize {
		return h, ErrInvalidProof
	}
	h.Slot = binary.LittleEndian.Uint64(data[0:8])
	h.ProposerIndex = binary.LittleEndian.Uint64(data[8:16])
	copy(h.StateRoot[:], data[16:48])
	copy(h.BodyRoot[:], data[48:80])
	return h, nil
}

// Expand reattaches a parent root, yielding the full header.
func (h *CompressedHeader) Expand(parentRoot types.Hash) BeaconHeader {
	return BeaconHeader{
		Slot:          h.Slot,
		ProposerIndex: h.ProposerIndex,
		ParentRoot:    parentRoot,
		StateRoot:     h.StateRoot,
		BodyRoot:      h.BodyRoot,
	}
}

// Compress drops the parent root from a full header.
func (h *BeaconHeader) Compress() CompressedHeader {
	return CompressedHeader{
		Slot:          h.Slot,
		ProposerIndex: h.ProposerIndex,
		StateRoot:     h.StateRoot,
		BodyRoot:      h.BodyRoot,
	}
}

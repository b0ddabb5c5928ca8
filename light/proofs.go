package light

import (
	"encoding/binary"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/lightproof/lightproof/ssz"
)

// ProofKind selects the shape of a blockroot proof.
type ProofKind byte

const (
	// ProofKindDirect means the target header itself carries the
	// signature aggregate.
	ProofKindDirect ProofKind = iota

	// ProofKindHeaderChain links the target header to a signed descendant
	// through a short chain of compressed headers.
	ProofKindHeaderChain

	// ProofKindHistoric proves the target block root into the state of a
	// signed header through the historical summaries.
	ProofKindHistoric
)

// MaxHeaderChain bounds the number of intermediate headers in a
// header-chain proof.
const MaxHeaderChain = 10

// BlockrootProof carries whatever links a target header to a sync
// committee signature. The sync aggregate always belongs to the header
// that actually bears the signature.
type BlockrootProof struct {
	Kind         ProofKind
	SyncBits     bitfield.Bitvector512
	Signature    []byte
	Headers      []CompressedHeader
	SignedHeader BeaconHeader
	Gindex       ssz.Gindex
	Branch       [][32]byte
}

// Encode serializes the proof as a selector byte followed by the selected
// variant's payload.
func (p *BlockrootProof) Encode() []byte {
	buf := []byte{byte(p.Kind)}
	buf = append(buf, p.SyncBits...)
	buf = append(buf, p.Signature...)
	switch p.Kind {
	case ProofKindHeaderChain:
		buf = append(buf, byte(len(p.Headers)))
		for i := range p.Headers {
			buf = append(buf, p.Headers[i].Encode()...)
		}
		buf = append(buf, p.SignedHeader.Encode()...)
	case ProofKindHistoric:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(p.Gindex))
		buf = append(buf, byte(len(p.Branch)))
		for _, h := range p.Branch {
			buf = append(buf, h[:]...)
		}
		buf = append(buf, p.SignedHeader.Encode()...)
	}
	return buf
}

// DecodeBlockrootProof parses a serialized blockroot proof.
func DecodeBlockrootProof(data []byte) (*BlockrootProof, error) {
	if len(data) < 1+64+96 {
		return nil, ErrInvalidProof
	}
	p := &BlockrootProof{
		Kind:      ProofKind(data[0]),
		SyncBits:  bitfield.Bitvector512(data[1 : 1+64]),
		Signature: data[65 : 65+96],
	}
	rest := data[161:]
	var err error
	switch p.Kind {
	case ProofKindDirect:
		if len(rest) != 0 {
			return nil, ErrInvalidProof
		}
	case ProofKindHeaderChain:
		if len(rest) < 1 {
			return nil, ErrInvalidProof
		}
		n := int(rest[0])
		if n > MaxHeaderChain || len(rest) != 1+n*CompressedHeaderSize+HeaderSize {
			return nil, ErrInvalidProof
		}
		p.Headers = make([]CompressedHeader, n)
		pos := 1
		for i := 0; i < n; i++ {
			if p.Headers[i], err = DecodeCompressedHeader(rest[pos : pos+CompressedHeaderSize]); err != nil {
				return nil, err
			}
			pos += CompressedHeaderSize
		}
		if p.SignedHeader, err = DecodeHeader(rest[pos:]); err != nil {
			return nil, err
		}
	case ProofKindHistoric:
		if len(rest) < 9 {
			return nil, ErrInvalidProof
		}
		p.Gindex = ssz.Gindex(binary.LittleEndian.Uint64(rest))
		n := int(rest[8])
		if len(rest) != 9+n*32+HeaderSize {
			return nil, ErrInvalidProof
		}
		pos := 9
		p.Branch = readBranch(rest, &pos, n)
		if p.SignedHeader, err = DecodeHeader(rest[pos:]); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidProof
	}
	return p, nil
}

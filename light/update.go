package light

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/prysmaticlabs/go-bitfield"
)

// syncAggregateSize is 64 bytes of committee bits plus a 96-byte signature.
const syncAggregateSize = 64 + 96

// Update is a light client update: proof of one sync committee period
// transition. The attested header's state root commits to the next
// committee through the branch; the sync aggregate is the previous
// committee's signature over the attested header.
type Update struct {
	AttestedHeader         BeaconHeader
	NextCommitteePubkeys   []byte
	NextCommitteeAggregate [48]byte
	NextCommitteeBranch    [][32]byte
	FinalizedHeader        BeaconHeader
	FinalityBranch         [][32]byte
	SyncBits               bitfield.Bitvector512
	SyncCommitteeSignature []byte
	SignatureSlot          uint64
}

// updateSize returns the serialized size of an update for a given
// committee branch depth.
func updateSize(branchDepth int) int {
	// attested ‖ committee ‖ branch ‖ finalized ‖ finality branch ‖
	// aggregate ‖ signature slot
	return HeaderSize + CommitteePubkeysSize + 48 + branchDepth*32 +
		HeaderSize + (branchDepth+1)*32 + syncAggregateSize + 8
}

// Encode serializes the update into its fixed-size wire form.
func (u *Update) Encode() []byte {
	buf := make([]byte, 0, updateSize(len(u.NextCommitteeBranch)))
	buf = append(buf, u.AttestedHeader.Encode()...)
	buf = append(buf, u.NextCommitteePubkeys...)
	buf = append(buf, u.NextCommitteeAggregate[:]...)
	for _, h := range u.NextCommitteeBranch {
		buf = append(buf, h[:]...)
	}
	buf = append(buf, u.FinalizedHeader.Encode()...)
	for _, h := range u.FinalityBranch {
		buf = append(buf, h[:]...)
	}
	buf = append(buf, u.SyncBits...)
	buf = append(buf, u.SyncCommitteeSignature...)
	buf = binary.LittleEndian.AppendUint64(buf, u.SignatureSlot)
	return buf
}

// DecodeUpdate parses an update. The committee branch depth depends on the
// fork active at the attested slot, so the header is peeked first.
func DecodeUpdate(spec *ChainSpec, data []byte) (*Update, error) {
	if len(data) < HeaderSize {
		return nil, ErrInvalidProof
	}
	slot := binary.LittleEndian.Uint64(data[0:8])
	fork := spec.ForkAtEpoch(spec.EpochForSlot(slot))
	depth := nextCommitteeGindex(fork).Depth()
	if len(data) != updateSize(depth) {
		return nil, ErrInvalidProof
	}

	u := new(Update)
	var err error
	pos := 0
	if u.AttestedHeader, err = DecodeHeader(data[pos : pos+HeaderSize]); err != nil {
		return nil, err
	}
	pos += HeaderSize
	u.NextCommitteePubkeys = data[pos : pos+CommitteePubkeysSize]
	pos += CommitteePubkeysSize
	copy(u.NextCommitteeAggregate[:], data[pos:pos+48])
	pos += 48
	u.NextCommitteeBranch = readBranch(data, &pos, depth)
	if u.FinalizedHeader, err = DecodeHeader(data[pos : pos+HeaderSize]); err != nil {
		return nil, err
	}
	pos += HeaderSize
	u.FinalityBranch = readBranch(data, &pos, depth+1)
	u.SyncBits = bitfield.Bitvector512(data[pos : pos+64])
	pos += 64
	u.SyncCommitteeSignature = data[pos : pos+96]
	pos += 96
	u.SignatureSlot = binary.LittleEndian.Uint64(data[pos:])
	return u, nil
}

func readBranch(data []byte, pos *int, depth int) [][32]byte {
	branch := make([][32]byte, depth)
	for i := range branch {
		copy(branch[i][:], data[*pos:*pos+32])
		*pos += 32
	}
	return branch
}

// EncodeUpdateFrames wraps serialized updates in the standard response
// framing: per update an 8-byte little-endian length covering the fork
// digest and payload, a 4-byte fork digest, then the payload.
func EncodeUpdateFrames(updates [][]byte) []byte {
	var buf []byte
	for _, u := range updates {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(u)+4))
		buf = append(buf, 0, 0, 0, 0)
		buf = append(buf, u...)
	}
	return buf
}

// EncodeUpdateFramesOffsets wraps serialized updates in the offset-table
// framing emitted by lighthouse: a table of 4-byte little-endian entry
// offsets, then per entry the 8-byte length, 8 reserved bytes, the 4-byte
// fork digest and the payload.
func EncodeUpdateFramesOffsets(updates [][]byte) []byte {
	table := make([]byte, 4*len(updates))
	var body []byte
	base := len(table)
	for i, u := range updates {
		binary.LittleEndian.PutUint32(table[4*i:], uint32(base+len(body)))
		body = binary.LittleEndian.AppendUint64(body, uint64(len(u)+4))
		body = append(body, 0, 0, 0, 0, 0, 0, 0, 0)
		body = append(body, 0, 0, 0, 0)
		body = append(body, u...)
	}
	return append(table, body...)
}

// ParseUpdateFrames splits an updates response into raw update payloads.
// Both the standard length-prefixed framing and the lighthouse offset
// framing are accepted; a JSON error envelope is reported as a network
// error carrying the server's message.
func ParseUpdateFrames(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		var envelope struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrNetwork, envelope.Message)
		}
		return nil, ErrInvalidProof
	}

	// An offset table starts with a small first offset and non-zero bytes
	// where the standard framing has the high half of its first length.
	lighthouse := len(data) > 12 &&
		!allZero(data[4:8]) &&
		binary.LittleEndian.Uint32(data[0:4]) < 1000

	var frames [][]byte
	for pos, idx := 0, 0; pos+12 < len(data); idx++ {
		dataOffset := pos + 8 + 4
		if lighthouse {
			if (idx+1)*4 > len(data) {
				return nil, ErrInvalidProof
			}
			pos = int(binary.LittleEndian.Uint32(data[idx*4:]))
			if pos+12 > len(data) {
				return nil, ErrInvalidProof
			}
			dataOffset = pos + 16 + 4
		}
		length := int(binary.LittleEndian.Uint64(data[pos:]))
		if length < 4 || dataOffset+length-4 > len(data) {
			return nil, ErrInvalidProof
		}
		frames = append(frames, data[dataOffset:dataOffset+length-4])
		pos = dataOffset + length - 4
	}
	return frames, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

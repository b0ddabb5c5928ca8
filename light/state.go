package light

import (
	"encoding/binary"
	"sort"

	"github.com/lightproof/lightproof/types"
)

// SyncStateKind tags the persisted control state of a chain.
type SyncStateKind byte

const (
	// SyncStateEmpty means no trust anchor exists yet.
	SyncStateEmpty SyncStateKind = iota

	// SyncStateCheckpoint means a trusted block root is known but the
	// committee for its period has not been bootstrapped.
	SyncStateCheckpoint

	// SyncStatePeriods means one or more committee periods are cached.
	SyncStatePeriods
)

// ChainSyncState is the persisted control state for one chain. Exactly one
// variant is active: Empty, Checkpoint(root), or Periods(set). The Periods
// variant is never empty; an empty period set collapses to Empty.
type ChainSyncState struct {
	Kind       SyncStateKind
	Checkpoint types.Hash
	Periods    []uint32
}

// EncodeSyncState serializes a chain sync state as a tag byte followed by
// the variant payload: a 32-byte root for Checkpoint, or 4-byte
// little-endian period numbers for Periods.
func EncodeSyncState(s ChainSyncState) []byte {
	switch s.Kind {
	case SyncStateCheckpoint:
		buf := make([]byte, 1+32)
		buf[0] = byte(SyncStateCheckpoint)
		copy(buf[1:], s.Checkpoint[:])
		return buf
	case SyncStatePeriods:
		if len(s.Periods) == 0 {
			return []byte{byte(SyncStateEmpty)}
		}
		buf := make([]byte, 1+4*len(s.Periods))
		buf[0] = byte(SyncStatePeriods)
		for i, p := range s.Periods {
			binary.LittleEndian.PutUint32(buf[1+4*i:], p)
		}
		return buf
	default:
		return []byte{byte(SyncStateEmpty)}
	}
}

// DecodeSyncState parses a serialized chain sync state. Unknown tags and
// malformed payloads decode as Empty, forcing a clean re-bootstrap rather
// than trusting corrupted state.
func DecodeSyncState(data []byte) ChainSyncState {
	if len(data) == 0 {
		return ChainSyncState{Kind: SyncStateEmpty}
	}
	switch SyncStateKind(data[0]) {
	case SyncStateCheckpoint:
		if len(data) != 1+32 {
			return ChainSyncState{Kind: SyncStateEmpty}
		}
		var s ChainSyncState
		s.Kind = SyncStateCheckpoint
		copy(s.Checkpoint[:], data[1:])
		return s
	case SyncStatePeriods:
		if len(data) < 5 || (len(data)-1)%4 != 0 {
			return ChainSyncState{Kind: SyncStateEmpty}
		}
		n := (len(data) - 1) / 4
		periods := make([]uint32, n)
		for i := 0; i < n; i++ {
			periods[i] = binary.LittleEndian.Uint32(data[1+4*i:])
		}
		sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })
		return ChainSyncState{Kind: SyncStatePeriods, Periods: periods}
	default:
		return ChainSyncState{Kind: SyncStateEmpty}
	}
}

// hasPeriod reports whether the state caches the given period.
func (s *ChainSyncState) hasPeriod(period uint32) bool {
	for _, p := range s.Periods {
		if p == period {
			return true
		}
	}
	return false
}

// lowest returns the smallest cached period, or 0 when none is cached.
func (s *ChainSyncState) lowest() uint32 {
	if len(s.Periods) == 0 {
		return 0
	}
	return s.Periods[0]
}

// highest returns the largest cached period, or 0 when none is cached.
func (s *ChainSyncState) highest() uint32 {
	if len(s.Periods) == 0 {
		return 0
	}
	return s.Periods[len(s.Periods)-1]
}

// highestAtOrBelow returns the largest cached period not exceeding the
// target, or 0 when none qualifies.
func (s *ChainSyncState) highestAtOrBelow(target uint32) uint32 {
	var best uint32
	for _, p := range s.Periods {
		if p <= target && p > best {
			best = p
		}
	}
	return best
}

// addPeriod inserts a period keeping the set sorted and duplicate-free.
func (s *ChainSyncState) addPeriod(period uint32) {
	if s.hasPeriod(period) {
		return
	}
	s.Periods = append(s.Periods, period)
	sort.Slice(s.Periods, func(i, j int) bool { return s.Periods[i] < s.Periods[j] })
	s.Kind = SyncStatePeriods
	s.Checkpoint = types.Hash{}
}

// removePeriod drops a period from the set. Removing the last period
// collapses the state to Empty.
func (s *ChainSyncState) removePeriod(period uint32) {
	for i, p := range s.Periods {
		if p == period {
			s.Periods = append(s.Periods[:i], s.Periods[i+1:]...)
			break
		}
	}
	if len(s.Periods) == 0 {
		s.Kind = SyncStateEmpty
	}
}

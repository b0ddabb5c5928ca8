package light

// Fork identifies a consensus layer fork. The zero value is the genesis
// fork; the schedule in a ChainSpec lists the activation epoch of every
// later fork, starting with Altair.
type Fork int

const (
	ForkPhase0 Fork = iota
	ForkAltair
	ForkBellatrix
	ForkCapella
	ForkDeneb
	ForkElectra
)

// Slot and period math constants shared by all supported chains.
const (
	// SlotsPerEpochBits is log2 of the 32 slots per epoch.
	SlotsPerEpochBits = 5

	// EpochsPerPeriodBits is log2 of the 256 epochs per sync committee
	// period, so a period spans 8192 slots.
	EpochsPerPeriodBits = 8

	// EpochsPerPeriod is the number of epochs in one sync committee period.
	EpochsPerPeriod = 1 << EpochsPerPeriodBits
)

// ChainSpec carries the per-chain constants needed to derive signing
// domains and sync committee periods.
type ChainSpec struct {
	ChainID               uint64
	Name                  string
	GenesisValidatorsRoot [32]byte

	// ForkEpochs holds the activation epoch of each fork starting with
	// Altair. An epoch at or past ForkEpochs[i] is in fork i+1 or later.
	ForkEpochs []uint64

	forkVersion func(fork Fork) [4]byte
}

var mainnetSpec = &ChainSpec{
	ChainID: 1,
	Name:    "mainnet",
	GenesisValidatorsRoot: [32]byte{
		0x4b, 0x36, 0x3d, 0xb9, 0x4e, 0x28, 0x61, 0x20, 0xd7, 0x6e, 0xb9, 0x05, 0x34, 0x0f, 0xdd, 0x4e,
		0x54, 0xbf, 0xe9, 0xf0, 0x6b, 0xf3, 0x3f, 0xf6, 0xcf, 0x5a, 0xd2, 0x7f, 0x51, 0x1b, 0xfe, 0x95,
	},
	ForkEpochs: []uint64{74240, 144896, 194048, 269568, 364032},
	forkVersion: func(fork Fork) [4]byte {
		return [4]byte{byte(fork), 0, 0, 0}
	},
}

var sepoliaSpec = &ChainSpec{
	ChainID: 11155111,
	Name:    "sepolia",
	GenesisValidatorsRoot: [32]byte{
		0xd8, 0xea, 0x17, 0x1f, 0x3c, 0x94, 0xae, 0xa2, 0x1e, 0xbc, 0x42, 0xa1, 0xed, 0x61, 0x05, 0x2a,
		0xcf, 0x3f, 0x92, 0x09, 0xc0, 0x0e, 0x4e, 0xfb, 0xaa, 0xdd, 0xac, 0x09, 0xed, 0x9b, 0x80, 0x78,
	},
	ForkEpochs: []uint64{50, 100, 56832, 132608, 222464},
	forkVersion: func(fork Fork) [4]byte {
		id := uint64(0x6f) + uint64(fork)
		return [4]byte{0x90, byte(id >> 16), byte(id >> 8), byte(id)}
	},
}

var chainSpecs = map[uint64]*ChainSpec{
	mainnetSpec.ChainID: mainnetSpec,
	sepoliaSpec.ChainID: sepoliaSpec,
}

// SpecForChain returns the spec for a chain id, or ErrUnsupportedChain.
func SpecForChain(chainID uint64) (*ChainSpec, error) {
	spec, ok := chainSpecs[chainID]
	if !ok {
		return nil, ErrUnsupportedChain
	}
	return spec, nil
}

// EpochForSlot returns the epoch containing the given slot.
func (s *ChainSpec) EpochForSlot(slot uint64) uint64 {
	return slot >> SlotsPerEpochBits
}

// PeriodForSlot returns the sync committee period serving the given slot.
func (s *ChainSpec) PeriodForSlot(slot uint64) uint32 {
	return uint32(slot >> (SlotsPerEpochBits + EpochsPerPeriodBits))
}

// ForkAtEpoch returns the fork active at the given epoch.
func (s *ChainSpec) ForkAtEpoch(epoch uint64) Fork {
	fork := ForkPhase0
	for _, at := range s.ForkEpochs {
		if epoch < at {
			break
		}
		fork++
	}
	return fork
}

// ForkVersion returns the 4-byte fork version used in domain computation.
func (s *ChainSpec) ForkVersion(fork Fork) [4]byte {
	return s.forkVersion(fork)
}

package light

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/lightproof/lightproof/crypto"
	"github.com/lightproof/lightproof/log"
	"github.com/lightproof/lightproof/metrics"
	"github.com/lightproof/lightproof/ssz"
	"github.com/lightproof/lightproof/types"
)

// StoreConfig bounds the committee store.
type StoreConfig struct {
	// MaxPeriods caps the number of cached period records per chain.
	MaxPeriods int

	// WeakSubjectivityEpochs is the maximum epoch gap between the highest
	// cached period and a requested period before the store demands
	// independent corroboration from the checkpoint service.
	WeakSubjectivityEpochs uint64
}

// DefaultStoreConfig returns the default store bounds.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxPeriods:             3,
		WeakSubjectivityEpochs: 4096,
	}
}

// CommitteeStore resolves sync committee periods to trusted validator
// sets. A period becomes trusted through checkpoint bootstrap, through a
// chain of verified light client updates, or through the previous-period
// hash fallback; never from a proof payload.
type CommitteeStore struct {
	spec    *ChainSpec
	cfg     StoreConfig
	broker  Broker
	storage Storage
	log     *log.Logger

	mu sync.Mutex
}

// NewCommitteeStore creates a store for one chain.
func NewCommitteeStore(chainID uint64, broker Broker, storage Storage, cfg StoreConfig) (*CommitteeStore, error) {
	spec, err := SpecForChain(chainID)
	if err != nil {
		return nil, err
	}
	if cfg.MaxPeriods < 2 {
		cfg.MaxPeriods = 2
	}
	return &CommitteeStore{
		spec:    spec,
		cfg:     cfg,
		broker:  broker,
		storage: storage,
		log:     log.Default().Module("light").With("chain", spec.Name),
	}, nil
}

// Spec returns the chain spec the store operates on.
func (s *CommitteeStore) Spec() *ChainSpec {
	return s.spec
}

// SetCheckpoint installs a trusted checkpoint root. It is ignored once
// periods are cached; the chain of custody then supersedes it.
func (s *CommitteeStore) SetCheckpoint(root types.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.loadState()
	if state.Kind == SyncStatePeriods {
		return
	}
	s.saveState(ChainSyncState{Kind: SyncStateCheckpoint, Checkpoint: root})
}

// Validators resolves the trusted validator set for a period. It returns
// ErrPending while an external fetch is outstanding; the caller re-invokes
// with the same period once the broker can answer.
func (s *CommitteeStore) Validators(period uint32) (*PeriodRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.loadState()
	if state.hasPeriod(period) {
		return s.loadRecord(period)
	}

	if len(state.Periods) == 0 {
		if err := s.bootstrap(state); err != nil {
			return nil, err
		}
		state = s.loadState()
		if state.hasPeriod(period) {
			return s.loadRecord(period)
		}
	}

	if period < state.lowest() {
		// Backward requests are unrecoverable except for the immediate
		// predecessor of a cached period, which the delayed-finality
		// fallback can still authenticate.
		if state.hasPeriod(period + 1) {
			if err := s.recoverPreviousPeriod(period); err != nil {
				return nil, err
			}
			return s.loadRecord(period)
		}
		return nil, fmt.Errorf("%w: cannot sync backwards to period %d", ErrNotCached, period)
	}

	if period > state.highest() {
		if gap := uint64(period-state.highest()) * EpochsPerPeriod; gap > s.cfg.WeakSubjectivityEpochs {
			if err := s.corroborateAnchor(); err != nil {
				return nil, err
			}
		}
	}

	if err := s.syncForward(state, period); err != nil {
		return nil, err
	}
	state = s.loadState()
	if !state.hasPeriod(period) {
		return nil, fmt.Errorf("%w: period %d not reached by update sync", ErrNotCached, period)
	}
	return s.loadRecord(period)
}

// bootstrap establishes the first trusted period from a checkpoint. With
// no checkpoint installed yet, one is fetched from the checkpoint service
// first.
func (s *CommitteeStore) bootstrap(state ChainSyncState) error {
	if state.Kind == SyncStateEmpty {
		root, err := s.fetchFinalizedCheckpoint()
		if err != nil {
			return err
		}
		state = ChainSyncState{Kind: SyncStateCheckpoint, Checkpoint: root}
		s.saveState(state)
	}

	root := state.Checkpoint
	slot, err := s.fetchHeaderSlot(root)
	if err != nil {
		return err
	}

	data, err := s.broker.Fetch(fmt.Sprintf("eth/v1/beacon/light_client/bootstrap/%s", root.Hex()), EncodingSSZ, SourceBeaconAPI)
	if err != nil {
		return err
	}
	boot, err := DecodeBootstrap(s.spec, data)
	if err != nil {
		return err
	}
	if boot.Header.Slot != slot || boot.Header.HashTreeRoot() != root {
		return fmt.Errorf("%w: bootstrap header does not match checkpoint", ErrInvalidProof)
	}

	committeeRoot, err := CommitteeRoot(boot.CommitteePubkeys, boot.CommitteeAggregate)
	if err != nil {
		return err
	}
	fork := s.spec.ForkAtEpoch(s.spec.EpochForSlot(slot))
	if !ssz.VerifyProof(boot.CommitteeBranch, committeeRoot, currentCommitteeGindex(fork), boot.Header.StateRoot) {
		return fmt.Errorf("%w: invalid committee branch in bootstrap", ErrInvalidProof)
	}

	period := s.spec.PeriodForSlot(slot)
	s.storePeriod(&PeriodRecord{Period: period, Pubkeys: boot.CommitteePubkeys})
	s.saveAnchor(slot, root)
	metrics.StoreBootstraps.Inc()
	s.log.Info("bootstrapped sync committee", "period", period, "slot", slot)
	return nil
}

// syncForward advances the cache from the highest cached period at or
// below the target by verifying the light client update chain.
func (s *CommitteeStore) syncForward(state ChainSyncState, target uint32) error {
	start := state.highestAtOrBelow(target)
	count := target - start
	url := fmt.Sprintf("eth/v1/beacon/light_client/updates?start_period=%d&count=%d", start, count)
	data, err := s.broker.Fetch(url, EncodingSSZ, SourceBeaconAPI)
	if err != nil {
		return err
	}
	frames, err := ParseUpdateFrames(data)
	if err != nil {
		return err
	}
	for _, frame := range frames {
		update, err := DecodeUpdate(s.spec, frame)
		if err != nil {
			return err
		}
		if err := s.applyUpdate(update); err != nil {
			return err
		}
	}
	return nil
}

// applyUpdate verifies one light client update against the cached chain of
// custody and caches the committee period it proves.
func (s *CommitteeStore) applyUpdate(u *Update) error {
	if err := s.verifyUpdateSignature(u); err != nil {
		return err
	}

	committeeRoot, err := CommitteeRoot(u.NextCommitteePubkeys, u.NextCommitteeAggregate)
	if err != nil {
		return err
	}
	fork := s.spec.ForkAtEpoch(s.spec.EpochForSlot(u.AttestedHeader.Slot))
	if !ssz.VerifyProof(u.NextCommitteeBranch, committeeRoot, nextCommitteeGindex(fork), u.AttestedHeader.StateRoot) {
		return fmt.Errorf("%w: invalid committee branch in update", ErrInvalidProof)
	}

	period := s.spec.PeriodForSlot(u.AttestedHeader.Slot) + 1
	rec := &PeriodRecord{Period: period, Pubkeys: u.NextCommitteePubkeys}
	if prev, err := s.loadRecord(period - 1); err == nil {
		rec.PreviousPubkeysHash = CommitteePubkeysHash(prev.Pubkeys)
	}
	s.storePeriod(rec)
	s.saveAnchorIfNewer(u.AttestedHeader.Slot, types.Hash(u.AttestedHeader.HashTreeRoot()))
	metrics.StoreUpdatesVerified.Inc()
	s.log.Debug("verified light client update", "period", period, "slot", u.AttestedHeader.Slot)
	return nil
}

// verifyUpdateSignature checks the sync aggregate over the attested
// header using the already-trusted committee of the signature slot's
// period, retrying the previous period on failure to cover signatures
// produced before delayed finality rotated the committee.
func (s *CommitteeStore) verifyUpdateSignature(u *Update) error {
	if !hasQuorum(u.SyncBits) {
		return fmt.Errorf("%w: insufficient sync committee participation", ErrInvalidProof)
	}
	signingRoot := s.spec.SigningRootForHeader(&u.AttestedHeader, u.SignatureSlot)
	period := s.spec.PeriodForSlot(u.SignatureSlot)

	ok, err := s.verifyWithCachedPeriod(period, u.SyncBits, signingRoot, u.SyncCommitteeSignature)
	if !ok && period > 0 {
		ok, _ = s.verifyWithCachedPeriod(period-1, u.SyncBits, signingRoot, u.SyncCommitteeSignature)
	}
	if !ok {
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: invalid signature in light client update", ErrInvalidProof)
	}
	return nil
}

func (s *CommitteeStore) verifyWithCachedPeriod(period uint32, bits bitfield.Bitvector512, msg [32]byte, sig []byte) (bool, error) {
	rec, err := s.loadRecord(period)
	if err != nil {
		return false, err
	}
	points, err := rec.Points()
	if err != nil {
		return false, fmt.Errorf("%w: corrupt pubkeys for period %d", ErrIntegrity, period)
	}
	return crypto.BLSFastAggregateVerify(participants(points, bits), msg[:], sig), nil
}

// recoverPreviousPeriod authenticates period P while holding only P+1.
// The committee handover happens at the first finalized block of a period,
// not at the boundary, so P's keys may still matter after P+1 is cached.
// The update link fetched at start_period=P-1 carries P's committee as its
// nextSyncCommittee; hashing it and matching P+1's stored
// PreviousPubkeysHash proves authenticity without a finality-timing proof.
func (s *CommitteeStore) recoverPreviousPeriod(period uint32) error {
	next, err := s.loadRecord(period + 1)
	if err != nil {
		return err
	}
	var zero [32]byte
	if next.PreviousPubkeysHash == zero {
		return fmt.Errorf("%w: no previous pubkeys hash for period %d", ErrNotCached, period+1)
	}
	if period == 0 {
		return fmt.Errorf("%w: no update link before period 0", ErrNotCached)
	}

	url := fmt.Sprintf("eth/v1/beacon/light_client/updates?start_period=%d&count=1", period-1)
	data, err := s.broker.Fetch(url, EncodingSSZ, SourceBeaconAPI)
	if err != nil {
		return err
	}
	frames, err := ParseUpdateFrames(data)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: empty updates response", ErrNetwork)
	}
	update, err := DecodeUpdate(s.spec, frames[0])
	if err != nil {
		return err
	}
	if CommitteePubkeysHash(update.NextCommitteePubkeys) != next.PreviousPubkeysHash {
		return fmt.Errorf("%w: update pubkeys do not match stored previous hash", ErrInvalidProof)
	}
	s.storePeriod(&PeriodRecord{Period: period, Pubkeys: update.NextCommitteePubkeys})
	s.log.Info("recovered previous period via pubkeys hash", "period", period)
	return nil
}

// corroborateAnchor asks the checkpoint service for the canonical block
// root at the anchor slot and requires an exact match with the locally
// verified root. A mismatch wipes all cached sync state for the chain;
// this is a hard security boundary, not a soft retry.
func (s *CommitteeStore) corroborateAnchor() error {
	slot, root, ok := s.loadAnchor()
	if !ok {
		return nil
	}
	data, err := s.broker.Fetch(fmt.Sprintf("eth/v1/beacon/blocks/%d/root", slot), EncodingJSON, SourceCheckpoint)
	if err != nil {
		return err
	}
	var resp struct {
		Data struct {
			Root string `json:"root"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil || resp.Data.Root == "" {
		return fmt.Errorf("%w: invalid block root response", ErrNetwork)
	}
	if types.HexToHash(resp.Data.Root) != root {
		s.wipe()
		s.log.Error("weak subjectivity check failed, sync state wiped", "slot", slot)
		return ErrIntegrity
	}
	return nil
}

// wipe deletes all cached sync state for the chain, forcing the next call
// back to a full checkpoint bootstrap.
func (s *CommitteeStore) wipe() {
	state := s.loadState()
	for _, p := range state.Periods {
		s.storage.Delete(periodKey(s.spec.ChainID, p))
	}
	s.storage.Delete(stateKey(s.spec.ChainID))
	s.storage.Delete(anchorKey(s.spec.ChainID))
	metrics.StoreWipes.Inc()
}

// storePeriod persists a record, evicting when the cache is full. Eviction
// keeps the absolute oldest and absolute newest periods and removes the
// next-oldest, preserving the chain-of-custody anchor while bounding
// storage.
func (s *CommitteeStore) storePeriod(rec *PeriodRecord) {
	state := s.loadState()
	for len(state.Periods) >= s.cfg.MaxPeriods && !state.hasPeriod(rec.Period) {
		victim := state.lowest()
		if len(state.Periods) > 2 {
			victim = state.Periods[1]
		}
		s.storage.Delete(periodKey(s.spec.ChainID, victim))
		state.removePeriod(victim)
		metrics.StorePeriodsEvicted.Inc()
		s.log.Debug("evicted period", "period", victim)
	}
	state.addPeriod(rec.Period)
	s.storage.Set(periodKey(s.spec.ChainID, rec.Period), rec.Encode())
	s.saveState(state)
}

func (s *CommitteeStore) loadState() ChainSyncState {
	data, ok := s.storage.Get(stateKey(s.spec.ChainID))
	if !ok {
		return ChainSyncState{Kind: SyncStateEmpty}
	}
	return DecodeSyncState(data)
}

func (s *CommitteeStore) saveState(state ChainSyncState) {
	s.storage.Set(stateKey(s.spec.ChainID), EncodeSyncState(state))
}

func (s *CommitteeStore) loadRecord(period uint32) (*PeriodRecord, error) {
	data, ok := s.storage.Get(periodKey(s.spec.ChainID, period))
	if !ok {
		return nil, fmt.Errorf("%w: period %d", ErrNotCached, period)
	}
	return DecodePeriodRecord(period, data)
}

func (s *CommitteeStore) saveAnchor(slot uint64, root types.Hash) {
	buf := make([]byte, 8+32)
	binary.LittleEndian.PutUint64(buf, slot)
	copy(buf[8:], root[:])
	s.storage.Set(anchorKey(s.spec.ChainID), buf)
}

func (s *CommitteeStore) saveAnchorIfNewer(slot uint64, root types.Hash) {
	if prev, _, ok := s.loadAnchor(); ok && prev >= slot {
		return
	}
	s.saveAnchor(slot, root)
}

func (s *CommitteeStore) loadAnchor() (uint64, types.Hash, bool) {
	data, ok := s.storage.Get(anchorKey(s.spec.ChainID))
	if !ok || len(data) != 8+32 {
		return 0, types.Hash{}, false
	}
	var root types.Hash
	copy(root[:], data[8:])
	return binary.LittleEndian.Uint64(data), root, true
}

func (s *CommitteeStore) fetchFinalizedCheckpoint() (types.Hash, error) {
	data, err := s.broker.Fetch("eth/v1/beacon/states/head/finality_checkpoints", EncodingJSON, SourceCheckpoint)
	if err != nil {
		return types.Hash{}, err
	}
	var resp struct {
		Data struct {
			Finalized struct {
				Epoch string `json:"epoch"`
				Root  string `json:"root"`
			} `json:"finalized"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil || resp.Data.Finalized.Root == "" {
		return types.Hash{}, fmt.Errorf("%w: invalid finality checkpoints response", ErrNetwork)
	}
	return types.HexToHash(resp.Data.Finalized.Root), nil
}

func (s *CommitteeStore) fetchHeaderSlot(root types.Hash) (uint64, error) {
	data, err := s.broker.Fetch(fmt.Sprintf("eth/v1/beacon/headers/%s", root.Hex()), EncodingJSON, SourceBeaconAPI)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Data struct {
			Header struct {
				Message struct {
					Slot string `json:"slot"`
				} `json:"message"`
			} `json:"header"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil || resp.Data.Header.Message.Slot == "" {
		return 0, fmt.Errorf("%w: invalid header response", ErrNetwork)
	}
	slot, err := strconv.ParseUint(resp.Data.Header.Message.Slot, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid slot in header response", ErrNetwork)
	}
	return slot, nil
}

// hasQuorum reports whether the participation bits reach the 2/3
// supermajority required for a trustworthy aggregate.
func hasQuorum(bits bitfield.Bitvector512) bool {
	return bits.Count()*3 >= CommitteeSize*2
}

// participants selects the curve points of the validators whose bit is
// set.
func participants(points []*crypto.BLSPubkey, bits bitfield.Bitvector512) []*crypto.BLSPubkey {
	selected := make([]*crypto.BLSPubkey, 0, len(points))
	for i := uint64(0); i < CommitteeSize; i++ {
		if bits.BitAt(i) {
			selected = append(selected, points[i])
		}
	}
	return selected
}

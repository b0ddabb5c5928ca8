package metrics

// Pre-defined metrics for the verification core. They live in
// DefaultRegistry so subsystems can increment them without plumbing a
// registry through every constructor.

var (
	// ---- Sync committee store ----

	// StoreBootstraps counts checkpoint bootstraps performed.
	StoreBootstraps = DefaultRegistry.Counter("store.bootstraps")
	// StoreUpdatesVerified counts light client updates verified and applied.
	StoreUpdatesVerified = DefaultRegistry.Counter("store.updates_verified")
	// StorePeriodsEvicted counts cached committee periods evicted.
	StorePeriodsEvicted = DefaultRegistry.Counter("store.periods_evicted")
	// StoreWipes counts sync state wipes after a failed integrity check.
	StoreWipes = DefaultRegistry.Counter("store.wipes")

	// ---- Blockroot verification ----

	// BlockrootsVerified counts block roots verified against a committee
	// signature.
	BlockrootsVerified = DefaultRegistry.Counter("blockroot.verified")
	// BlockrootCacheHits counts verifications satisfied by the signing-root
	// cache without a pairing check.
	BlockrootCacheHits = DefaultRegistry.Counter("blockroot.cache_hits")
	// BlockrootVerifyTime records blockroot verification duration in
	// milliseconds, pairing check included.
	BlockrootVerifyTime = DefaultRegistry.Histogram("blockroot.verify_ms")
)

package light

import "errors"

// Errors returned by the light client core. ErrPending is a control-flow
// signal, not a failure: the caller retries the same operation once the
// outstanding network request has resolved.
var (
	ErrUnsupportedChain = errors.New("light: unsupported chain id")
	ErrInvalidProof     = errors.New("light: invalid proof")
	ErrPending          = errors.New("light: request pending")
	ErrNetwork          = errors.New("light: network error")
	ErrIntegrity        = errors.New("light: integrity failure, sync state reset")
	ErrNotCached        = errors.New("light: period not cached")
)

package light

import (
	"fmt"
	"sync"
)

// Encoding selects the wire format of a fetched response.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingSSZ
)

// Source selects which upstream service answers a fetch. The checkpoint
// service must be operated independently of the beacon node so that the
// weak subjectivity check actually corroborates anything.
type Source int

const (
	SourceBeaconAPI Source = iota
	SourceCheckpoint
)

// Broker resolves external data requests for the light client core. A
// fetch that cannot be answered yet returns ErrPending; the caller retries
// the same logical operation once the request resolves. De-duplicating
// concurrent requests for the same URL is the broker's contract.
type Broker interface {
	Fetch(url string, enc Encoding, src Source) ([]byte, error)
}

// MemoryBroker is a Broker backed by pre-registered responses. It counts
// every fetch per URL, which lets tests assert that cached operations do
// not re-issue network requests.
type MemoryBroker struct {
	mu        sync.Mutex
	responses map[string][]byte
	failures  map[string]string
	fetches   map[string]int
}

// NewMemoryBroker returns an empty broker. Unregistered URLs resolve to
// ErrPending.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		responses: make(map[string][]byte),
		failures:  make(map[string]string),
		fetches:   make(map[string]int),
	}
}

// Register installs a successful response for a URL.
func (b *MemoryBroker) Register(url string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[url] = data
	delete(b.failures, url)
}

// RegisterError installs a failing response for a URL.
func (b *MemoryBroker) RegisterError(url string, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[url] = reason
	delete(b.responses, url)
}

// Fetch implements Broker.
func (b *MemoryBroker) Fetch(url string, enc Encoding, src Source) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches[url]++
	if reason, ok := b.failures[url]; ok {
		return nil, fmt.Errorf("%w: %s", ErrNetwork, reason)
	}
	if data, ok := b.responses[url]; ok {
		return data, nil
	}
	return nil, ErrPending
}

// FetchCount reports how many times a URL has been fetched.
func (b *MemoryBroker) FetchCount(url string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches[url]
}

// TotalFetches reports the number of fetches across all URLs.
func (b *MemoryBroker) TotalFetches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.fetches {
		total += n
	}
	return total
}

// Package dedupe defines the interface for duplicate-submission tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records submission fingerprints so retried ingestion batches
// drop already-seen scorecard lines before resolution. It is a fast
// path only: per-player match tracking remains the idempotency source
// of truth downstream.
type Deduper interface {
	// SeenAndRecord atomically checks if fp was seen and records it if not.
	// Returns true if fp was already seen, false if it was newly recorded.
	// This is the ONLY method for deduplication - thread-safe and atomic.
	SeenAndRecord(ctx context.Context, fp string) bool

	// Unrecord removes a fingerprint from the seen set, allowing a retry.
	// This should only be used when a record was marked as seen but failed
	// to be handed on (e.g., queue backpressure).
	Unrecord(ctx context.Context, fp string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a map over a fixed ring.
// For bounded mode (maxSize > 0): the ring holds fingerprints in arrival
// order and the oldest live entry is evicted when its slot is reclaimed.
// For unbounded mode (maxSize <= 0): a plain map, no eviction.
type inMemoryDeduper struct {
	mu      sync.RWMutex
	seen    map[string]int // fingerprint -> ring slot, -1 in unbounded mode
	ring    []string       // fingerprints in arrival order, "" when vacated
	next    int            // slot the next fingerprint lands in
	maxSize int            // ring capacity (0 or negative = UNBOUNDED)
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000, // default max size
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}

	return d
}

// SeenAndRecord atomically checks if fp was seen and records it if not.
// Returns true if fp was already seen, false if it was newly recorded.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, fp string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[fp]; exists {
		return true
	}

	if d.maxSize > 0 {
		// Reclaiming the slot evicts whatever arrived a full lap ago.
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
			d.size.Add(-1)
		}
		d.ring[d.next] = fp
		d.seen[fp] = d.next
		d.next = (d.next + 1) % d.maxSize
	} else {
		d.seen[fp] = -1
	}
	d.size.Add(1)
	return false
}

// Unrecord removes a fingerprint from the seen set, allowing a retry.
func (d *inMemoryDeduper) Unrecord(_ context.Context, fp string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, exists := d.seen[fp]
	if !exists {
		return
	}
	delete(d.seen, fp)
	if slot >= 0 {
		d.ring[slot] = ""
	}
	d.size.Add(-1)
}

// Size returns the current number of recorded fingerprints.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

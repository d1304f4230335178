// Package history keeps completed run results: a bounded in-memory ring
// for the serving path and an SQLite store for durable run history.
package history

import (
	"sync"

	"github.com/codecollab/swarm/pkg/models"
)

// DefaultRingCapacity is the default bound on the in-memory history.
const DefaultRingCapacity = 100

// Ring is a bounded, thread-safe buffer of run results. When full, the
// oldest entry is dropped to make room. Memory stays bounded no matter
// how many runs the process serves.
type Ring struct {
	mu       sync.RWMutex
	entries  []*models.RunResult
	start    int
	count    int
	capacity int
}

// NewRing creates a ring holding at most capacity results.
// A non-positive capacity falls back to the default.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Ring{
		entries:  make([]*models.RunResult, capacity),
		capacity: capacity,
	}
}

// Add appends a result, evicting the oldest when full.
func (r *Ring) Add(result *models.RunResult) {
	if result == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count < r.capacity {
		r.entries[(r.start+r.count)%r.capacity] = result
		r.count++
		return
	}

	r.entries[r.start] = result
	r.start = (r.start + 1) % r.capacity
}

// List returns the stored results oldest-first.
func (r *Ring) List() []*models.RunResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.RunResult, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.entries[(r.start+i)%r.capacity]
	}
	return out
}

// Recent returns up to n results, newest-first.
func (r *Ring) Recent(n int) []*models.RunResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]*models.RunResult, n)
	for i := 0; i < n; i++ {
		out[i] = r.entries[(r.start+r.count-1-i)%r.capacity]
	}
	return out
}

// Len returns the number of stored results.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Reset clears the ring.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		r.entries[i] = nil
	}
	r.start = 0
	r.count = 0
}

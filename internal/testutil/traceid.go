package testutil

import "sync"

// FixedTraceID returns the same trace id every time.
//
// With a FixedTraceID, the same command produces byte-identical JSON output,
// so responses can be compared whole.
//
// Thread-safety: FixedTraceID is stateless and safe for concurrent use.
type FixedTraceID string

// DefaultTraceID is used by a zero FixedTraceID.
const DefaultTraceID = "00000000-0000-7000-8000-000000000000"

// Generate returns the fixed id, or DefaultTraceID if it is empty.
func (id FixedTraceID) Generate() string {
	if id == "" {
		return DefaultTraceID
	}
	return string(id)
}

// SequenceTraceIDs returns predetermined ids in order.
//
// Thread-safety: SequenceTraceIDs is safe for concurrent use via internal mutex.
type SequenceTraceIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewSequenceTraceIDs creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewSequenceTraceIDs("trace-1", "trace-2")
//	gen.Generate() // "trace-1"
//	gen.Generate() // "trace-2"
//	gen.Generate() // panic: all trace ids used
func NewSequenceTraceIDs(ids ...string) *SequenceTraceIDs {
	return &SequenceTraceIDs{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics once every id has been used, so a test that writes more responses
// than it expects fails loudly.
func (g *SequenceTraceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("SequenceTraceIDs: all trace ids used")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Used reports how many ids have been handed out.
func (g *SequenceTraceIDs) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.idx
}

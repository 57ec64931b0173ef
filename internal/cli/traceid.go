package cli

import "github.com/google/uuid"

// TraceIDGenerator produces the trace_id stamped on JSON responses.
type TraceIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 trace ids, so responses
// sort by creation time in collected logs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7, or a random UUID if the clock
// source fails.
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

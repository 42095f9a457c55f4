package coinwatch

import "fmt"

// ValidationError reports a user input rejected before it reaches the state.
// The transition it belongs to is a no-op.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// NetworkError reports a market data call that did not complete at the
// transport level.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network error: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError reports a market data call that completed with a non-2xx
// status, or with a body that cannot be decoded.
type UpstreamError struct {
	Op      string
	Status  int    // 0 when the status was 2xx but the body was invalid
	Message string // best effort message extracted from the response
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: upstream error: %s", e.Op, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError reports a durable slot that could not be read, parsed or
// written. It never reaches the stores: restore degrades to defaults and
// writes are best effort.
type PersistenceError struct {
	Slot string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cannot %s state slot %q: %v", e.Op, e.Slot, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

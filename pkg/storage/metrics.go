package storage

import "time"

// Metrics records storage operation outcomes.
//
// Implementations must be safe for concurrent use. A nil Metrics disables
// collection entirely; the coordinator checks for nil before every call so
// disabled metrics carry zero overhead.
type Metrics interface {
	// ObserveOperation records a coordinator operation with its duration
	// and outcome.
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordBytes records payload bytes moved through the byte store.
	// Direction is "read" or "write".
	RecordBytes(direction string, bytes int64)
}

// observeOperation records an operation if metrics are enabled.
func observeOperation(m Metrics, operation string, start time.Time, err error) {
	if m != nil {
		m.ObserveOperation(operation, time.Since(start), err)
	}
}

// recordBytes records transferred bytes if metrics are enabled.
func recordBytes(m Metrics, direction string, bytes int64) {
	if m != nil {
		m.RecordBytes(direction, bytes)
	}
}

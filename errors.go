// Package paperindex implements a paged, fixed-width paper store with a
// bounded in-memory write-back cache. It maintains, per paper, a
// publication year and a citation histogram keyed by year, addressed by
// a stable internal record identifier external components can embed.
package paperindex

import "errors"

// Sentinel errors returned by index operations.
var (
	// ErrClosed is returned when operating on a closed index.
	ErrClosed = errors.New("index is closed")

	// ErrCounterOverflow is returned when a citation count would exceed
	// the fixed-width field's capacity.
	ErrCounterOverflow = errors.New("citation count overflow")

	// ErrCorruptRecord is returned when a stored record cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt paper record")

	// ErrCorruptSnapshot is returned when a persisted name mapping
	// snapshot fails its checksum or cannot be parsed.
	ErrCorruptSnapshot = errors.New("corrupt name mapping snapshot")

	// ErrAlreadyAssigned is returned by NameMapping.Assign when the
	// paper id already has a record identifier.
	ErrAlreadyAssigned = errors.New("paper id already assigned")
)

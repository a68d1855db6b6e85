// Package store defines the narrow contract the booking coordinator depends
// on for durable state: keyed reads plus version-guarded conditional writes
// applied through an all-or-nothing committer. Backends live in subpackages;
// a committer only accepts writes built by its own backend's stores.
package store

// Write is one pending conditional mutation destined for an atomic commit.
// Writes are built against the version stamp the caller read; the enclosing
// commit is rejected as a unit if any stamp has moved since.
type Write interface {
	// Describe identifies the write in conflict and failure logs,
	// e.g. "slot ROOM-1/2025-11-19#10 -> HOLD".
	Describe() string
}

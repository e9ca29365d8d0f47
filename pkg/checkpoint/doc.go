// Package checkpoint persists conversation state keyed by thread ID.
//
// Invariants:
// - A snapshot is written only when a user turn completes; readers always see
//   the history as of the last completed turn.
// - Snapshots are full copies, never shared slices, so callers can append
//   without racing the store.
// - Per-thread locking allows concurrent threads without a global lock.
package checkpoint

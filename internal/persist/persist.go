// Package persist implements the durable side of the GoPrep store boundary.
// Two adapters exist behind one interface: a JSON file on a pluggable
// filesystem (IndexedDB in WASM, the OS disk natively, an in-memory fs in
// tests) and a normalized SQLite database. Both carry exactly the durable
// subset the core exports: never history, never transient flags.
package persist

import "github.com/kittclouds/goprep/internal/store"

// Persister saves and restores the durable subset of a store.
// Load returns (nil, nil) when nothing has been persisted yet. A non-nil
// result still has to pass store.CheckPersisted before it may be trusted;
// callers discard rejected payloads and fall back to the seed path.
type Persister interface {
	Save(ps *store.PersistedState) error
	Load() (*store.PersistedState, error)
	Close() error
}

// Package credstore persists the client's access and refresh tokens.
//
// # Tiers
//
// A Store is built from two backends chosen at construction time:
//
//  1. a durable backend (SQLiteBackend, a local database file), and
//  2. an in-memory MemoryBackend that lives only as long as the process.
//
// When no durable backend is available the Store runs memory-only. When the
// durable backend fails at runtime the Store logs a *StorageError, switches to
// the memory tier for the rest of the process and serves the call from there.
// Durability reports which mode is active.
//
// # Pairing
//
// SetPair and ClearPair write or remove both tokens together. Backends that
// implement PairBackend do so atomically (SQLite uses one transaction).
// Callers that care about the "both or neither" invariant must go through
// these methods rather than Set/Delete.
package credstore

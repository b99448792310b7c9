// Package kvstore provides durable key/value stores backing the registry state.
//
// Every store implements interfaces.KVStore: point reads plus an atomic Commit
// of a batch of set/delete changes. Atomicity comes from the underlying engine:
//
//   - MemoryStore: a mutex-guarded map
//   - PebbleStore: a synced Pebble batch
//   - BadgerStore: a Badger read-write transaction
//   - SQLiteStore: an SQL transaction over a single kv table
//
// Stores are selected by URI through Open:
//
//	memory://
//	pebble:///var/lib/registry/state
//	badger:///var/lib/registry/state
//	sqlite:///var/lib/registry/state.db
package kvstore

// Package state is the typed accessor over the registry's key/value store.
//
// Logical keys form a closed union (AdminKey, NextTokenIDKey, OwnerKey,
// MetadataKey); each maps to a one-byte prefix optionally followed by the
// big-endian token id. Values are decoded to their expected types by the
// Get*/Set* helpers.
//
// Writes are buffered in a Mutable and reach the store only through Commit,
// which applies them in one atomic store commit.
package state

// Package interfaces defines core interfaces and types for the project NFT
// registry, separating interface definitions from implementations.
//
// The package provides interfaces for the key components of the system:
//
// # Registry Interfaces
//
// ProjectRegistry: The public operation set of the registry (initialize, mint,
// transfer, owner and metadata queries, version).
//
// Authorizer: The authorization oracle deciding whether the current caller may
// act as a claimed address.
//
// # Storage Interfaces
//
// KVStore: Durable key/value store with atomic multi-key commits, backing the
// registry state (memory, Pebble, Badger, SQLite).
//
// ContentBackend: Content-addressed storage for exported project bundles
// across multiple backend types (file, S3, IPFS, Vault).
//
// ContentBackendFactory: Creates content backends from URI strings and manages
// multi-backend configurations for redundant storage.
//
// # Types
//
// - Address: 20-byte Ethereum address
// - TokenID: sequential token identifier, starting at 1
// - ProjectMetadata: immutable (project id, content pointer) pair
// - RegistryError: closed error taxonomy with stable numeric codes
package interfaces

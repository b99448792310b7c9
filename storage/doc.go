// Package storage provides content-addressed storage for exported project
// bundles, with pluggable backends.
//
// Backends store opaque bytes and address them by content pointer. A content
// pointer is a CIDv1 with the raw codec and a sha2-256 multihash, so every
// backend produces the same pointer for the same bytes and the pointer can be
// minted into the registry as token metadata:
//
//   - File system storage for local development and testing
//   - S3-compatible storage for cloud deployments
//   - IPFS storage for decentralized content
//   - Vault KV v2 storage for private deployments
//
// # Storage URI Format
//
// Storage backends are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/registry/bundles/
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/prefix/?region=us-west-2&endpoint=minio:9000
//   - ipfs://ipfs.example.com:5001/
//   - vault://[TOKEN@]vault.example.com:8200/secret/registry?tls=false
//
// # Multi-Backend Storage
//
// MultiStorageBackend writes to every available backend and reads from the
// first backend that returns content matching the requested pointer.
//
//	factory := storage.NewStorageBackendFactory(logger)
//	backend, err := factory.CreateMultiBackend(locations)
//
//	pointer, err := storage.ExportProject(ctx, backend, bundle)
//	bundle, err := storage.ImportProject(ctx, backend, pointer)
//
// # Error Handling
//
// Backends return interfaces.ErrContentNotFound for missing content,
// interfaces.ErrBackendUnavailable when the backing service cannot be reached
// and ErrInvalidPointer for malformed pointers. Fetched content is checked
// against its pointer before it is returned.
package storage

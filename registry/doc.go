// Package registry implements the project NFT registry on top of a
// key/value store.
//
// Every operation runs under a single service-wide lock, reads what it needs
// through a state.Mutable overlay and commits the overlay to the store at most
// once. A failed operation discards its overlay, so the store never sees a
// partial write.
//
// Authorization is delegated to an interfaces.Authorizer. Initialize and Mint
// require the caller to act as the admin address, Transfer requires the caller
// to act as the from address. The authorizer is consulted before the ownership
// comparison in Transfer, so an unauthorized caller is rejected even when the
// ownership check would also fail.
//
// A non-zero nonce in the returned interfaces.Authorization is consumed in the
// operation's commit and must exceed the last nonce consumed for that signer,
// so a replayed signed request fails with ErrStaleNonce. Failed operations
// consume nothing.
//
// # Usage
//
//	store, _ := kvstore.Open("pebble:///var/lib/registry", log)
//	reg := registry.NewRegistry(store, auth.ContextAuthorizer{}, log)
//
//	ctx := auth.WithSigner(context.Background(), admin)
//	_ = reg.Initialize(ctx, admin)
//	tokenID, _ := reg.Mint(ctx, owner, "proj-1", "bafkrei...")
package registry

/*
Package clients provides a client library for the project NFT registry HTTP API.

RegistryClient signs every mutating request body with the configured key, so
the server can authorize the caller as the address the operation acts for.

	signer, err := auth.NewSignerFromHex(os.Getenv("PRIVATE_KEY"))
	client := clients.NewRegistryClient("http://localhost:8080", signer)

	tokenID, err := client.Mint(ctx, owner, "proj-1", pointer)
	if errors.Is(err, interfaces.ErrNotAdmin) {
	    // signer is not the registry admin
	}

Registry failures are returned as *api.APIError values that unwrap to the
matching interfaces.RegistryError.
*/
package clients

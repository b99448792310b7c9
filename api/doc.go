/*
Package api defines the wire types shared by the registry HTTP server and its
clients.

# Endpoints

	POST /api/v1/initialize                       InitializeRequest  -> EmptyResponse
	POST /api/v1/tokens                           MintRequest        -> MintResponse
	POST /api/v1/tokens/{token_id}/transfer       TransferRequest    -> EmptyResponse
	GET  /api/v1/tokens/{token_id}/owner                             -> OwnerResponse
	GET  /api/v1/tokens/{token_id}/metadata                          -> interfaces.ProjectMetadata
	GET  /api/v1/version                                             -> VersionResponse
	POST /api/v1/projects/export                  storage.ProjectBundle -> ExportResponse
	GET  /api/v1/projects/{content_pointer}                          -> storage.ProjectBundle

# Authentication

POST requests carry an X-Flashbots-Signature header with the signer address and
an EIP-191 signature over "<METHOD> <path>\n<nonce>\n<body>", plus the nonce in
X-Request-Nonce. The server recovers the signer and authorizes it against the
address the operation acts for (the admin for initialize and mint, the from
address for transfer). Each signer's nonces must strictly increase: a registry
operation consumes its nonce, and a replayed request is rejected with 401.
Project export accepts any signer.

# Errors

Failed requests return ErrorResponse. Code is the registry error discriminant
(1 already initialized, 2 not initialized, 3 not admin, 4 token not found,
5 not token owner) or zero for failures outside the registry error set.
*/
package api

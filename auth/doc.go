// Package auth is the registry's authorization oracle.
//
// Callers prove control of an Ethereum address by signing each request. The
// X-Flashbots-Signature header carries "<address>:<signature>" over
// SignedPayload, which binds the method, path, body and the X-Request-Nonce
// header. VerifySignature checks the header and stores the recovered address
// and nonce in the request context.
//
// ContextAuthorizer then answers RequireAuth(addr) by comparing addr with that
// address and hands the nonce back in an interfaces.Authorization. The
// registry consumes the nonce in the same commit as the operation, so a
// replayed request fails with interfaces.ErrStaleNonce. Signers pick nonces
// from a NonceSource, which only ever increases.
package auth

/*
Package httpserver exposes the project NFT registry over HTTP.

Handler maps the registry operations and project bundle storage onto JSON
endpoints (see package api for the wire types). Server wraps the handler with
request logging, signature verification, health endpoints, optional pprof and
a separate Prometheus metrics listener.

# Authentication

Every API request passes through auth.VerifySignature. A request carrying a
valid X-Flashbots-Signature header runs with the recovered signer in its
context, which the registry's authorizer compares against the address the
operation acts for. Unsigned requests still reach the handler and fail
authorization inside the registry.

# Error Mapping

	AlreadyInitialized, NotInitialized  409 Conflict
	NotAdmin, NotTokenOwner             403 Forbidden
	TokenNotFound                       404 Not Found
	missing or invalid signature        401 Unauthorized
	malformed request                   400 Bad Request
	content backend unavailable         503 Service Unavailable

# Health Endpoints

  - /livez - always 200 while the process serves requests
  - /readyz - 200 when ready, 503 while draining
  - /drain, /undrain - toggle readiness ahead of a rollout
*/
package httpserver

package api

import (
	"fmt"

	"github.com/ruteri/project-nft-registry/interfaces"
)

// InitializeRequest sets the registry admin.
type InitializeRequest struct {
	Admin interfaces.Address `json:"admin"`
}

// MintRequest mints a new project token to To.
type MintRequest struct {
	To             interfaces.Address `json:"to"`
	ProjectID      string             `json:"project_id"`
	ContentPointer string             `json:"content_pointer"`
}

// Validate rejects requests without project metadata.
func (r *MintRequest) Validate() error {
	return interfaces.ProjectMetadata{ProjectID: r.ProjectID, ContentPointer: r.ContentPointer}.Validate()
}

// MintResponse carries the id assigned by a successful mint.
type MintResponse struct {
	TokenID interfaces.TokenID `json:"token_id"`
}

// TransferRequest moves a token from From to To. TokenID repeats the id from
// the path so that the signed body names the token it transfers.
type TransferRequest struct {
	From    interfaces.Address `json:"from"`
	To      interfaces.Address `json:"to"`
	TokenID interfaces.TokenID `json:"token_id"`
}

// OwnerResponse carries the current owner of a token.
type OwnerResponse struct {
	Owner interfaces.Address `json:"owner"`
}

// VersionResponse carries the registry build identifier.
type VersionResponse struct {
	Version string `json:"version"`
}

// ExportResponse carries the content pointer of a stored project bundle.
type ExportResponse struct {
	ContentPointer string `json:"content_pointer"`
}

// EmptyResponse is returned by operations without a result.
type EmptyResponse struct{}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  uint32 `json:"code,omitempty"`
}

// APIError is a failed response as seen by a client.
type APIError struct {
	StatusCode int
	Message    string
	Code       uint32
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("request failed with status %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the registry error, so errors.Is(err, interfaces.ErrNotAdmin)
// works on client results.
func (e *APIError) Unwrap() error {
	if regErr, ok := interfaces.RegistryErrorFromCode(e.Code); ok {
		return regErr
	}
	return nil
}

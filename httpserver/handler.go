package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/project-nft-registry/api"
	"github.com/ruteri/project-nft-registry/auth"
	"github.com/ruteri/project-nft-registry/interfaces"
	"github.com/ruteri/project-nft-registry/storage"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func badRequest(format string, args ...any) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf(format, args...)}
}

// Handler serves the registry API.
type Handler struct {
	registry interfaces.ProjectRegistry
	content  interfaces.ContentBackend
	log      *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
//
// Parameters:
//   - registry: The project NFT registry
//   - content: Content storage for project bundles; nil disables the project endpoints
//   - log: Structured logger for operational insights
func NewHandler(registry interfaces.ProjectRegistry, content interfaces.ContentBackend, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		content:  content,
		log:      log,
	}
}

// RegisterRoutes mounts the API on r. Callers are expected to install
// auth.VerifySignature in front of the mutating routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/initialize", h.HandleInitialize)
	r.Post("/api/v1/tokens", h.HandleMint)
	r.Post("/api/v1/tokens/{token_id}/transfer", h.HandleTransfer)
	r.Get("/api/v1/tokens/{token_id}/owner", h.HandleOwnerOf)
	r.Get("/api/v1/tokens/{token_id}/metadata", h.HandleGetMetadata)
	r.Get("/api/v1/version", h.HandleVersion)
	r.Post("/api/v1/projects/export", h.HandleExportProject)
	r.Get("/api/v1/projects/{content_pointer}", h.HandleFetchProject)
}

// HandleInitialize sets the registry admin.
//
// URL format: POST /api/v1/initialize
// Request body: {"admin": "0x..."}, signed by the admin.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	var req api.InitializeRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Admin == (interfaces.Address{}) {
		h.writeError(w, r, badRequest("admin address is required"))
		return
	}

	if err := h.registry.Initialize(r.Context(), req.Admin); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, api.EmptyResponse{})
}

// HandleMint mints a project token.
//
// URL format: POST /api/v1/tokens
// Request body: {"to": "0x...", "project_id": "...", "content_pointer": "..."}, signed by the admin.
// Response: {"token_id": n}
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	var req api.MintRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.To == (interfaces.Address{}) {
		h.writeError(w, r, badRequest("recipient address is required"))
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, &RequestError{StatusCode: http.StatusBadRequest, Err: err})
		return
	}

	tokenID, err := h.registry.Mint(r.Context(), req.To, req.ProjectID, req.ContentPointer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, api.MintResponse{TokenID: tokenID})
}

// HandleTransfer moves a token to a new owner.
//
// URL format: POST /api/v1/tokens/{token_id}/transfer
// Request body: {"from": "0x...", "to": "0x...", "token_id": n}, signed by from.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req api.TransferRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.TokenID != tokenID {
		h.writeError(w, r, badRequest("token id %s in body does not match path %s", req.TokenID, tokenID))
		return
	}
	if req.From == (interfaces.Address{}) || req.To == (interfaces.Address{}) {
		h.writeError(w, r, badRequest("from and to addresses are required"))
		return
	}

	if err := h.registry.Transfer(r.Context(), req.From, req.To, tokenID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, api.EmptyResponse{})
}

// HandleOwnerOf returns the current owner of a token.
//
// URL format: GET /api/v1/tokens/{token_id}/owner
func (h *Handler) HandleOwnerOf(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	owner, err := h.registry.OwnerOf(r.Context(), tokenID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, api.OwnerResponse{Owner: owner})
}

// HandleGetMetadata returns the metadata attached to a token at mint time.
//
// URL format: GET /api/v1/tokens/{token_id}/metadata
func (h *Handler) HandleGetMetadata(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	meta, err := h.registry.GetMetadata(r.Context(), tokenID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, meta)
}

func (h *Handler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, api.VersionResponse{Version: h.registry.Version()})
}

// HandleExportProject stores a project bundle in content storage. Any
// verified signer may export; unsigned requests are rejected.
//
// URL format: POST /api/v1/projects/export
// Request body: storage.ProjectBundle, signed
// Response: {"content_pointer": "bafkrei..."}
func (h *Handler) HandleExportProject(w http.ResponseWriter, r *http.Request) {
	if h.content == nil {
		h.writeError(w, r, &RequestError{StatusCode: http.StatusNotImplemented, Err: errors.New("content storage is not configured")})
		return
	}

	signer, ok := auth.SignerFrom(r.Context())
	if !ok {
		h.writeError(w, r, fmt.Errorf("%w: project export must be signed", auth.ErrUnauthorized))
		return
	}

	var bundle storage.ProjectBundle
	if err := decodeBody(r, &bundle); err != nil {
		h.writeError(w, r, err)
		return
	}

	pointer, err := storage.ExportProject(r.Context(), h.content, &bundle)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info("Project exported",
		slog.String("project_id", bundle.ProjectID),
		slog.String("content_pointer", pointer),
		slog.String("signer", signer.Hex()))
	h.writeJSON(w, api.ExportResponse{ContentPointer: pointer})
}

// HandleFetchProject returns the project bundle stored under a content
// pointer. Content that does not decode as a bundle is rejected.
//
// URL format: GET /api/v1/projects/{content_pointer}
func (h *Handler) HandleFetchProject(w http.ResponseWriter, r *http.Request) {
	if h.content == nil {
		h.writeError(w, r, &RequestError{StatusCode: http.StatusNotImplemented, Err: errors.New("content storage is not configured")})
		return
	}

	bundle, err := storage.ImportProject(r.Context(), h.content, chi.URLParam(r, "content_pointer"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, bundle)
}

func tokenIDParam(r *http.Request) (interfaces.TokenID, error) {
	raw := chi.URLParam(r, "token_id")
	tokenID, err := interfaces.ParseTokenID(raw)
	if err != nil {
		return 0, badRequest("invalid token id %q", raw)
	}
	return tokenID, nil
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return badRequest("failed to read request body: %v", err)
	}
	if len(body) > maxBodySize {
		return &RequestError{StatusCode: http.StatusRequestEntityTooLarge, Err: errors.New("request body too large")}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// statusFor maps an operation error to its HTTP status and wire code.
func statusFor(err error) (int, uint32) {
	var regErr interfaces.RegistryError
	if errors.As(err, &regErr) {
		switch regErr {
		case interfaces.ErrAlreadyInitialized, interfaces.ErrNotInitialized:
			return http.StatusConflict, regErr.Code()
		case interfaces.ErrNotAdmin, interfaces.ErrNotTokenOwner:
			return http.StatusForbidden, regErr.Code()
		case interfaces.ErrTokenNotFound:
			return http.StatusNotFound, regErr.Code()
		}
	}

	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.StatusCode, 0
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, interfaces.ErrStaleNonce):
		return http.StatusUnauthorized, 0
	case errors.Is(err, storage.ErrInvalidPointer), errors.Is(err, storage.ErrInvalidBundle):
		return http.StatusBadRequest, 0
	case errors.Is(err, storage.ErrContentTooLarge):
		return http.StatusRequestEntityTooLarge, 0
	case errors.Is(err, interfaces.ErrContentNotFound):
		return http.StatusNotFound, 0
	case errors.Is(err, interfaces.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, 0
	default:
		return http.StatusInternalServerError, 0
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "err", err, slog.String("path", r.URL.Path))
		msg = "internal error"
	} else {
		h.log.Debug("Request rejected", "err", err, slog.Int("status", status), slog.String("path", r.URL.Path))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: msg, Code: code})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

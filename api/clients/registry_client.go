package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ruteri/project-nft-registry/api"
	"github.com/ruteri/project-nft-registry/auth"
	"github.com/ruteri/project-nft-registry/interfaces"
	"github.com/ruteri/project-nft-registry/storage"
)

// RegistryClient talks to the registry HTTP API.
type RegistryClient struct {
	baseURL    string
	signer     *auth.Signer
	nonces     auth.NonceSource
	httpClient *http.Client
}

// NewRegistryClient creates a client for the server at baseURL. A nil signer
// sends unsigned requests, which the server rejects for mutating operations.
// Signed requests carry a fresh nonce each, so one signer should not have
// several requests in flight at once: a later nonce landing first makes the
// earlier request stale.
func NewRegistryClient(baseURL string, signer *auth.Signer, timeout ...time.Duration) *RegistryClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &RegistryClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		signer:  signer,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// Initialize sets the registry admin. The signer must control admin.
func (c *RegistryClient) Initialize(ctx context.Context, admin interfaces.Address) error {
	return c.post(ctx, "/api/v1/initialize", api.InitializeRequest{Admin: admin}, nil)
}

// Mint mints a token to to. The signer must be the registry admin.
func (c *RegistryClient) Mint(ctx context.Context, to interfaces.Address, projectID string, contentPointer string) (interfaces.TokenID, error) {
	var resp api.MintResponse
	err := c.post(ctx, "/api/v1/tokens", api.MintRequest{
		To:             to,
		ProjectID:      projectID,
		ContentPointer: contentPointer,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.TokenID, nil
}

// Transfer moves tokenID from from to to. The signer must control from.
func (c *RegistryClient) Transfer(ctx context.Context, from interfaces.Address, to interfaces.Address, tokenID interfaces.TokenID) error {
	path := fmt.Sprintf("/api/v1/tokens/%s/transfer", tokenID)
	return c.post(ctx, path, api.TransferRequest{From: from, To: to, TokenID: tokenID}, nil)
}

func (c *RegistryClient) OwnerOf(ctx context.Context, tokenID interfaces.TokenID) (interfaces.Address, error) {
	var resp api.OwnerResponse
	if err := c.get(ctx, fmt.Sprintf("/api/v1/tokens/%s/owner", tokenID), &resp); err != nil {
		return interfaces.Address{}, err
	}
	return resp.Owner, nil
}

func (c *RegistryClient) GetMetadata(ctx context.Context, tokenID interfaces.TokenID) (interfaces.ProjectMetadata, error) {
	var resp interfaces.ProjectMetadata
	if err := c.get(ctx, fmt.Sprintf("/api/v1/tokens/%s/metadata", tokenID), &resp); err != nil {
		return interfaces.ProjectMetadata{}, err
	}
	return resp, nil
}

func (c *RegistryClient) Version(ctx context.Context) (string, error) {
	var resp api.VersionResponse
	if err := c.get(ctx, "/api/v1/version", &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// ExportProject stores bundle in the server's content storage and returns its pointer.
func (c *RegistryClient) ExportProject(ctx context.Context, bundle *storage.ProjectBundle) (string, error) {
	var resp api.ExportResponse
	if err := c.post(ctx, "/api/v1/projects/export", bundle, &resp); err != nil {
		return "", err
	}
	return resp.ContentPointer, nil
}

// FetchProject retrieves an exported bundle by content pointer.
func (c *RegistryClient) FetchProject(ctx context.Context, pointer string) (*storage.ProjectBundle, error) {
	var bundle storage.ProjectBundle
	if err := c.get(ctx, "/api/v1/projects/"+url.PathEscape(pointer), &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (c *RegistryClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.signer != nil {
		nonce := c.nonces.Next()
		sig, err := c.signer.Sign(req.Method, req.URL.Path, nonce, payload)
		if err != nil {
			return fmt.Errorf("could not sign request: %w", err)
		}
		req.Header.Set(auth.SignatureHeader, sig)
		req.Header.Set(auth.NonceHeader, strconv.FormatUint(nonce, 10))
	}

	return c.do(req, out)
}

func (c *RegistryClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *RegistryClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &api.APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var errResp api.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Code = errResp.Code
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ruteri/project-nft-registry/api"
	"github.com/ruteri/project-nft-registry/auth"
	"github.com/ruteri/project-nft-registry/kvstore"
	"github.com/ruteri/project-nft-registry/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := testLogger()
	reg := registry.NewRegistry(kvstore.NewMemoryStore(), auth.ContextAuthorizer{}, logger)

	srv, err := New(&api.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      logger,
		GracefulShutdownDuration: time.Second,
	}, NewHandler(reg, nil, logger))
	require.NoError(t, err)
	reg.WithMetrics(srv.RegistryMetrics())
	return srv
}

func TestServer_HealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	router := srv.getRouter()

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, get("/livez").Code)
	assert.Equal(t, http.StatusOK, get("/readyz").Code)

	w := get("/drain")
	assert.JSONEq(t, `{"status":"draining"}`, w.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, get("/readyz").Code)
	assert.JSONEq(t, `{"status":"already draining"}`, get("/drain").Body.String())

	w = get("/undrain")
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
	assert.Equal(t, http.StatusOK, get("/readyz").Code)
	assert.JSONEq(t, `{"status":"already ready"}`, get("/undrain").Body.String())
}

func TestServer_APIRoutes(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.getRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/version", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"project-nft v1"}`, w.Body.String())

	// Malformed signatures are rejected before reaching the handler
	req := httptest.NewRequest(http.MethodGet, "/api/v1/version", nil)
	req.Header.Set(auth.SignatureHeader, "garbage")
	w = httptest.NewRecorder()
	srv.getRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

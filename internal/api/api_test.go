package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sifis-home/netspot-control/internal/auth"
	"github.com/sifis-home/netspot-control/internal/facade"
	"github.com/sifis-home/netspot-control/internal/supervisor"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	supervisor.NetspotBinary = "true"
	t.Cleanup(func() { supervisor.NetspotBinary = "netspot" })

	dir := t.TempDir()
	f, err := facade.New(facade.Config{
		RuntimePath: dir,
		DBPath:      filepath.Join(dir, "store.db"),
	})
	require.NoError(t, err)
	t.Cleanup(f.Shutdown)

	guard, err := auth.New("")
	require.NoError(t, err)

	return New(f, guard, filepath.Join(dir, "backups"))
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListProbesIncludesSeededDefault(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/v1/netspots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []supervisor.StatusEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Default configuration", entries[0].Name)
	assert.Equal(t, supervisor.StatusRunning, entries[0].Status)
}

func TestGetProbeUnknownIDIs404(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/v1/netspot/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProbeNonIntegerIDIs400(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/v1/netspot/foo", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProbeCRUDLifecycle(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	createBody := map[string]any{
		"configuration": map[string]any{"name": "Test", "enabled": true},
	}
	w := doJSON(t, router, http.MethodPost, "/v1/netspot", createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 2, created.ID)

	w = doJSON(t, router, http.MethodGet, "/v1/netspots", nil)
	var entries []supervisor.StatusEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	updateBody := map[string]any{
		"configuration": map[string]any{"name": "Test", "enabled": false},
	}
	w = doJSON(t, router, http.MethodPut, "/v1/netspot/2", updateBody)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/v1/netspot/2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/netspot/2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendTestAlarmDefaultsToCanonicalScenario(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/v1/netspots/test/alarm", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var seed supervisor.TestAlarmSeed
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &seed))
	assert.Equal(t, supervisor.DefaultTestAlarmSeed(), seed)

	w = doJSON(t, router, http.MethodGet, "/v1/netspots/alarms", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookCRUDLifecycle(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	createBody := map[string]any{"name": "n8n", "address": "http://127.0.0.1:9/hook"}
	w := doJSON(t, router, http.MethodPost, "/v1/netspots/webhook", createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodGet, "/v1/netspots/webhooks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/netspots/webhook/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNetworkInterfacesReturnsList(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/v1/network/interfaces", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
}

func TestMutatingRoutesRequireBearerTokenWhenGuardEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	supervisor.NetspotBinary = "true"
	t.Cleanup(func() { supervisor.NetspotBinary = "netspot" })

	dir := t.TempDir()
	f, err := facade.New(facade.Config{RuntimePath: dir, DBPath: filepath.Join(dir, "store.db")})
	require.NoError(t, err)
	t.Cleanup(f.Shutdown)

	hash, err := auth.HashSecret("s3cr3t")
	require.NoError(t, err)
	guard, err := auth.New(hash)
	require.NoError(t, err)

	s := New(f, guard, filepath.Join(dir, "backups"))
	router := s.Router()

	w := doJSON(t, router, http.MethodGet, "/v1/netspot/1/start", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	loginBody := map[string]any{"secret": "s3cr3t"}
	w = doJSON(t, router, http.MethodPost, "/v1/admin/login", loginBody)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/v1/netspot/1/start", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fdg312/health-navigator/internal/config"
)

func testServerConfig() *config.Config {
	return &config.Config{
		Env:         "test",
		Port:        8080,
		StorageMode: config.StorageModeMemory,
		JWTSecret:   "test-secret",
		JWTIssuer:   "health-navigator",
		AIMode:      "mock",
	}
}

func issueToken(t *testing.T, cfg *config.Config, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": cfg.JWTIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func newTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	cfg := testServerConfig()
	srv := New(cfg)
	t.Cleanup(func() {
		_ = srv.store.Close()
	})
	return srv, cfg
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func TestServerHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestServerRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/v1/medications", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestServerMedicationsFlow(t *testing.T) {
	srv, cfg := newTestServer(t)
	token := issueToken(t, cfg, "google:42")

	body := strings.NewReader(`{"name":"Aspirin","dose":"100mg","times":["0800","2000"]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/medications", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	rr := doRequest(srv, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/medications", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr = doRequest(srv, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Aspirin") {
		t.Errorf("expected created medication in list, got %s", rr.Body.String())
	}
}

func TestServerSettingsDefaults(t *testing.T) {
	srv, cfg := newTestServer(t)
	token := issueToken(t, cfg, "google:42")

	req := httptest.NewRequest(http.MethodGet, "/v1/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := doRequest(srv, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp struct {
		IsDefault bool `json:"is_default"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.IsDefault {
		t.Error("expected default settings for a fresh user")
	}
}

func TestServerSnapshotBeforeSync(t *testing.T) {
	srv, cfg := newTestServer(t)
	token := issueToken(t, cfg, "google:42")

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/snapshot", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := doRequest(srv, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 before any sync, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not_synced") {
		t.Errorf("expected not_synced error code, got %s", rr.Body.String())
	}
}

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sequring/proxypoolmgr/pool"
)

type fakeProvider struct {
	descriptors []pool.Descriptor
}

func (f *fakeProvider) Fetch(ctx context.Context) ([]pool.Descriptor, error) {
	return f.descriptors, nil
}

type fakeValidator struct{}

func (fakeValidator) Validate(ctx context.Context, proxyURL string) bool { return true }
func (fakeValidator) Measure(ctx context.Context, proxyURL string, n int) pool.ProbeResult {
	return pool.ProbeResult{}
}

func newTestManager(t *testing.T) *pool.Manager {
	t.Helper()
	opts := pool.Options{
		UseProxies:             true,
		SnapshotPath:           filepath.Join(t.TempDir(), "proxy_cache.json"),
		RefreshInterval:        time.Hour,
		RefreshThreshold:       time.Hour,
		RefreshRetryInterval:   time.Minute,
		HealthCheckInterval:    time.Hour,
		HealthCheckConcurrency: 8,
	}
	m := pool.New(opts, &fakeProvider{descriptors: []pool.Descriptor{
		{Host: "1.2.3.4", Port: 80, Protocol: "http", Country: "us", ProviderName: "static_list"},
	}}, fakeValidator{})
	t.Cleanup(func() { m.Close(context.Background()) })
	m.Refresh(context.Background())
	return m
}

func TestAdminRequiresToken(t *testing.T) {
	m := newTestManager(t)
	srv := NewAdminServer(m, "", "secret-token")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	srv.checkToken(srv.handleStats)(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}

func TestAdminStatsWithValidToken(t *testing.T) {
	m := newTestManager(t)
	srv := NewAdminServer(m, "", "secret-token")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("X-Reload-Token", "secret-token")
	w := httptest.NewRecorder()
	srv.checkToken(srv.handleStats)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats pool.StatsRecord
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats response: %v", err)
	}
	if stats.TotalProxies != 1 {
		t.Fatalf("expected 1 proxy, got %d", stats.TotalProxies)
	}
}

func TestAdminSelectReturnsDescriptor(t *testing.T) {
	m := newTestManager(t)
	srv := NewAdminServer(m, "", "secret-token")

	req := httptest.NewRequest(http.MethodPost, "/admin/select", nil)
	req.Header.Set("X-Reload-Token", "secret-token")
	w := httptest.NewRecorder()
	srv.checkToken(srv.handleSelect)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp selectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode select response: %v", err)
	}
	if !resp.Found || resp.Proxy == nil {
		t.Fatalf("expected a descriptor to be found")
	}
}

func TestAdminRefreshRejectsNonPost(t *testing.T) {
	m := newTestManager(t)
	srv := NewAdminServer(m, "", "secret-token")

	req := httptest.NewRequest(http.MethodGet, "/admin/refresh", nil)
	req.Header.Set("X-Reload-Token", "secret-token")
	w := httptest.NewRecorder()
	srv.checkToken(srv.handleRefresh)(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for a GET request, got %d", w.Code)
	}
}

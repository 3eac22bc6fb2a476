package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sequring/proxypoolmgr/config"
)

func TestResolveAliasesBrightdataToLuminati(t *testing.T) {
	cfg := &config.Config{ProxyService: "brightdata", LuminatiUsername: "u", LuminatiPassword: "p", LuminatiZone: "z"}
	p := Resolve(cfg)
	if _, ok := p.(*Luminati); !ok {
		t.Fatalf("expected brightdata to resolve to *Luminati, got %T", p)
	}
}

func TestResolveUnknownFallsBackToStaticList(t *testing.T) {
	cfg := &config.Config{ProxyService: "totally-unknown", StaticProxyListPath: "proxies.yaml"}
	p := Resolve(cfg)
	if _, ok := p.(*StaticList); !ok {
		t.Fatalf("expected unknown service to fall back to *StaticList, got %T", p)
	}
}

func TestLuminatiZoneSynthesisProducesTwentyThreeDescriptors(t *testing.T) {
	l := NewLuminati("user", "pass", "residential_zone")
	descs, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(descs) != 23 {
		t.Fatalf("expected 18 country descriptors + 5 rotating = 23, got %d", len(descs))
	}

	host := descs[0].Host
	port := descs[0].Port
	for _, d := range descs {
		if d.Host != host || d.Port != port {
			t.Fatalf("expected all descriptors to share the superproxy host:port, got %s:%d", d.Host, d.Port)
		}
		if d.Username == "" {
			t.Fatalf("expected every descriptor to carry a distinguishing username")
		}
	}

	seen := map[string]bool{}
	for _, d := range descs {
		seen[d.Key()] = true
	}
	// 18 country descriptors have distinct usernames; the 5 rotating
	// descriptors intentionally share one identical username
	// ("u-zone-residential_zone"), so they collapse to a single key.
	if len(seen) != 19 {
		t.Fatalf("expected 18 distinct country keys + 1 shared rotating key = 19, got %d", len(seen))
	}
}

func TestLuminatiRotatingUsernameHasNoSessionSuffix(t *testing.T) {
	l := NewLuminati("u", "p", "z1")
	descs, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	for _, d := range descs {
		if d.Country == "any" && d.Username != "u-zone-z1" {
			t.Fatalf("expected rotating username %q, got %q", "u-zone-z1", d.Username)
		}
	}
}

func TestLuminatiFetchRequiresCredentials(t *testing.T) {
	l := NewLuminati("", "", "zone")
	if _, err := l.Fetch(context.Background()); err == nil {
		t.Fatalf("expected an error when credentials are missing")
	}
}

func TestStaticListParsesYAMLAndSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxies.yaml")
	content := `
proxies:
  - host: 1.2.3.4
    port: 8080
    protocol: http
    country: us
  - host: ""
    port: 0
  - host: 5.6.7.8
    port: 1080
    protocol: socks5
    username: alice
    password: secret
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	s := NewStaticList(path)
	descs, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("expected the malformed entry to be skipped, got %d descriptors", len(descs))
	}
}

func TestStaticListMissingFileReturnsEmptyList(t *testing.T) {
	s := NewStaticList(filepath.Join(t.TempDir(), "missing.yaml"))
	descs, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("expected a missing file to yield no error, got %v", err)
	}
	if len(descs) != 0 {
		t.Fatalf("expected a missing file to yield an empty list, got %d descriptors", len(descs))
	}
}

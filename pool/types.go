// Package pool implements the Pool Store: the authoritative in-memory
// state for known proxy descriptors, their performance history, and
// the blacklist, together with the Selector, Reporter, and the Refresh
// and Health background loops that keep it current.
package pool

import (
	"fmt"
	"strings"
	"time"
)

// Descriptor is a single proxy endpoint plus its observed state.
type Descriptor struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`

	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	Country string `json:"country"`

	ProviderName string `json:"provider_name"`
	Zone         string `json:"zone,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	AddedAt      time.Time `json:"added_at"`

	IsActive     bool      `json:"is_active"`
	FailureCount int       `json:"failure_count"`
	LastChecked  time.Time `json:"last_checked"`
	LastUsed     time.Time `json:"last_used"`

	AvgResponseTimeMs int64 `json:"avg_response_time_ms"`
}

// Key returns the descriptor's identity within the pool. Nominally
// this is (host, port), but commercial zone providers publish many
// descriptors against one superproxy host:port, distinguished only by
// their structured username (see provider.Luminati) — so a non-empty
// username is folded into the identity to keep those distinct.
func (d *Descriptor) Key() string {
	if d.Username != "" {
		return fmt.Sprintf("%s:%d:%s", d.Host, d.Port, d.Username)
	}
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// ProxyURL renders the descriptor's canonical proxy URL string, the
// sole form accepted by the Validator and returned from Manager.ProxyURL.
func (d *Descriptor) ProxyURL() string {
	protocol := strings.ToLower(d.Protocol)
	if d.Username != "" {
		return fmt.Sprintf("%s://%s:%s@%s:%d", protocol, d.Username, d.Password, d.Host, d.Port)
	}
	return fmt.Sprintf("%s://%s:%d", protocol, d.Host, d.Port)
}

// Performance is the per-proxy counter set, keyed by Descriptor.Key().
type Performance struct {
	TotalRequests       int64     `json:"total_requests"`
	SuccessfulRequests  int64     `json:"successful_requests"`
	TotalResponseTimeMs int64     `json:"total_response_time_ms"`
	AvgResponseTimeMs   int64     `json:"avg_response_time_ms"`
	LastSuccess         time.Time `json:"last_success"`
}

// Snapshot is the persisted form of the Pool Store.
type Snapshot struct {
	Proxies     []Descriptor           `json:"proxies"`
	Performance map[string]Performance `json:"performance"`
	Blacklisted []Descriptor           `json:"blacklisted"`
	LastRefresh *time.Time             `json:"last_refresh,omitempty"`
}

// StatsRecord is the public summary returned by Manager.Stats.
type StatsRecord struct {
	TotalProxies       int            `json:"total_proxies"`
	ActiveProxies      int            `json:"active_proxies"`
	BlacklistedProxies int            `json:"blacklisted_proxies"`
	AvgSuccessRate     float64        `json:"avg_success_rate"`
	AvgResponseTimeMs  float64        `json:"avg_response_time_ms"`
	Countries          map[string]int `json:"countries"`
	LastRefresh        *time.Time     `json:"last_refresh,omitempty"`
}

// ProbeResult is the outcome of Validator.Measure.
type ProbeResult struct {
	SuccessCount   int     `json:"success_count"`
	FailureCount   int     `json:"failure_count"`
	AvgMs          float64 `json:"avg_ms"`
	MinMs          float64 `json:"min_ms"`
	MaxMs          float64 `json:"max_ms"`
	SuccessRatePct float64 `json:"success_rate_pct"`
}

// Package validator implements the Health Loop's per-proxy liveness
// and latency probe, generalizing the teacher's SOCKS5-dial-plus-TLS-
// handshake check to the http, https, and socks5 protocols a
// Descriptor can carry.
package validator

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	px "golang.org/x/net/proxy"

	"github.com/sequring/proxypoolmgr/pool"
)

// referenceTargets mirrors the teacher's fixed test-URL list, cycled
// across successive probes so a single flaky site can't condemn an
// otherwise healthy proxy.
var referenceTargets = []string{
	"https://www.google.com",
	"https://www.amazon.com",
	"https://www.wikipedia.org",
	"https://www.github.com",
}

// HTTPValidator is the pool.Validator implementation used by the
// Health Loop.
type HTTPValidator struct {
	timeout time.Duration
	cursor  uint64
}

// New constructs an HTTPValidator with the given per-request timeout.
func New(timeout time.Duration) *HTTPValidator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPValidator{timeout: timeout}
}

// targetOrder returns the reference targets in cycling order starting
// from the next cursor position, so successive calls spread load
// across the set rather than always trying the same target first.
func (v *HTTPValidator) targetOrder() []string {
	start := atomic.AddUint64(&v.cursor, 1) - 1
	n := uint64(len(referenceTargets))
	ordered := make([]string, n)
	for i := uint64(0); i < n; i++ {
		ordered[i] = referenceTargets[(start+i)%n]
	}
	return ordered
}

// Validate performs a single liveness probe and reports whether the
// proxy reached a reference target successfully.
func (v *HTTPValidator) Validate(ctx context.Context, proxyURL string) bool {
	result := v.Measure(ctx, proxyURL, 1)
	return result.SuccessCount > 0
}

// Measure performs n probes against cycling reference targets and
// aggregates success/failure counts and response-time statistics, the
// same shape as the teacher's per-proxy health check extended to a
// repeated sample.
func (v *HTTPValidator) Measure(ctx context.Context, proxyURL string, n int) pool.ProbeResult {
	var result probeAccumulator
	if n <= 0 {
		n = 1
	}

	client, err := v.buildClient(proxyURL)
	if err != nil {
		result.failureCount = n
		return result.finalize()
	}

	for i := 0; i < n; i++ {
		ok, elapsed := v.probeReferenceSet(ctx, client)

		if ok {
			result.successCount++
			result.totalMs += float64(elapsed.Milliseconds())
			if result.minMs == 0 || float64(elapsed.Milliseconds()) < result.minMs {
				result.minMs = float64(elapsed.Milliseconds())
			}
			if float64(elapsed.Milliseconds()) > result.maxMs {
				result.maxMs = float64(elapsed.Milliseconds())
			}
		} else {
			result.failureCount++
		}
	}

	return result.finalize()
}

// probeReferenceSet tries every reference target in cycling order and
// stops at the first success, matching the reference validator's
// "for url in self.test_urls: ... return True on first 200" behavior.
// It only reports failure once every target has been tried.
func (v *HTTPValidator) probeReferenceSet(ctx context.Context, client *http.Client) (bool, time.Duration) {
	for _, target := range v.targetOrder() {
		reqCtx, cancel := context.WithTimeout(ctx, v.timeout)
		start := time.Now()
		ok := v.probe(reqCtx, client, target)
		elapsed := time.Since(start)
		cancel()
		if ok {
			return true, elapsed
		}
	}
	return false, 0
}

func (v *HTTPValidator) probe(ctx context.Context, client *http.Client, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; proxypoolmgr-healthcheck)")

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// buildClient constructs an http.Client routed through proxyURL,
// using a SOCKS5 dialer for socks5 descriptors and the transport's
// native CONNECT-proxy support for http/https ones.
func (v *HTTPValidator) buildClient(proxyURL string) (*http.Client, error) {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("validator: invalid proxy URL %q: %w", proxyURL, err)
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}

	switch strings.ToLower(parsed.Scheme) {
	case "socks5", "socks5h":
		var auth *px.Auth
		if parsed.User != nil {
			pass, _ := parsed.User.Password()
			auth = &px.Auth{User: parsed.User.Username(), Password: pass}
		}
		dialer, err := px.SOCKS5("tcp", parsed.Host, auth, px.Direct)
		if err != nil {
			return nil, fmt.Errorf("validator: failed to build SOCKS5 dialer: %w", err)
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialContext(ctx, dialer, network, addr)
		}
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsed)
		if parsed.Scheme == "https" {
			// Go's Transport shares one TLSClientConfig between the TLS
			// leg that secures the proxy hop and the leg that secures the
			// end target reached through it, so skipping verification on
			// the former also skips it on the latter here.
			transport.TLSClientConfig.InsecureSkipVerify = true
		}
	default:
		return nil, fmt.Errorf("validator: unsupported proxy protocol %q", parsed.Scheme)
	}

	return &http.Client{Transport: transport, Timeout: v.timeout}, nil
}

// probeAccumulator collects raw samples before being reduced into a
// pool.ProbeResult by finalize.
type probeAccumulator struct {
	successCount int
	failureCount int
	totalMs      float64
	minMs        float64
	maxMs        float64
}

func (a probeAccumulator) finalize() pool.ProbeResult {
	total := a.successCount + a.failureCount
	var avg, rate float64
	if a.successCount > 0 {
		avg = a.totalMs / float64(a.successCount)
	}
	if total > 0 {
		rate = float64(a.successCount) / float64(total) * 100
	}
	return pool.ProbeResult{
		SuccessCount:   a.successCount,
		FailureCount:   a.failureCount,
		AvgMs:          avg,
		MinMs:          a.minMs,
		MaxMs:          a.maxMs,
		SuccessRatePct: rate,
	}
}

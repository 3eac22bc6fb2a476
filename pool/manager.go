package pool

import (
	"context"
	"log"
	"sync"
	"time"
)

// Options configures a Manager.
type Options struct {
	UseProxies bool

	SnapshotPath string

	RefreshInterval      time.Duration
	RefreshThreshold     time.Duration
	RefreshRetryInterval time.Duration

	HealthCheckInterval    time.Duration
	HealthCheckConcurrency int
}

// Manager ties the Pool Store together with a Provider and a
// Validator and runs the Refresh and Health background loops. It is
// the type behind the public operations of §6: Refresh, Select,
// Report, ProxyURL, Stats.
type Manager struct {
	store     *Store
	provider  Provider
	validator Validator

	useProxies bool

	refreshInterval      time.Duration
	refreshThreshold     time.Duration
	refreshRetryInterval time.Duration

	healthInterval    time.Duration
	healthConcurrency int

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	wg             sync.WaitGroup
}

// New constructs a Manager and, unless proxies are disabled, starts
// its background loops immediately.
func New(opts Options, p Provider, v Validator) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		store:     NewStore(opts.SnapshotPath),
		provider:  p,
		validator: v,

		useProxies: opts.UseProxies,

		refreshInterval:      opts.RefreshInterval,
		refreshThreshold:     opts.RefreshThreshold,
		refreshRetryInterval: opts.RefreshRetryInterval,

		healthInterval:    opts.HealthCheckInterval,
		healthConcurrency: opts.HealthCheckConcurrency,

		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	if !m.useProxies {
		log.Println("pool: USE_PROXIES is false, background loops disabled")
		return m
	}

	m.wg.Add(2)
	go m.refreshLoop()
	go m.healthLoop()

	return m
}

// Select filters the active set and picks one proxy. It returns
// (nil, false) when proxies are disabled or no descriptor matches.
func (m *Manager) Select(opts SelectOptions) (*Descriptor, bool) {
	if !m.useProxies {
		return nil, false
	}
	return m.store.Select(opts)
}

// Report ingests a caller-observed outcome for descriptor d.
func (m *Manager) Report(d *Descriptor, success bool, responseTimeMs *int64) {
	if d == nil || !m.useProxies {
		return
	}
	var rt int64
	if responseTimeMs != nil {
		rt = *responseTimeMs
	}
	m.store.Report(d.Key(), success, rt, time.Now())
}

// ProxyURL returns the canonical proxy URL string for d.
func (m *Manager) ProxyURL(d *Descriptor) (string, bool) {
	if d == nil {
		return "", false
	}
	return d.ProxyURL(), true
}

// Stats returns the current StatsRecord.
func (m *Manager) Stats() StatsRecord {
	return m.store.Stats()
}

// Refresh triggers an immediate provider fetch and merge, bypassing
// the Refresh Loop's normal due-for-refresh gate (used by the admin
// HTTP surface's /admin/refresh).
func (m *Manager) Refresh(ctx context.Context) {
	if !m.useProxies {
		return
	}
	m.doRefresh(ctx)
}

// ActiveDescriptors returns a snapshot of the current active set, for
// the metrics exporter.
func (m *Manager) ActiveDescriptors() []*Descriptor {
	return m.store.ActiveSnapshot()
}

// BlacklistedDescriptors returns a snapshot of the current blacklist,
// for the metrics exporter.
func (m *Manager) BlacklistedDescriptors() []*Descriptor {
	return m.store.BlacklistedSnapshot()
}

// Close signals both background loops to stop, waits for them to
// drain (bounded by ctx), and flushes one final snapshot.
func (m *Manager) Close(ctx context.Context) {
	m.shutdownCancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Println("pool: shutdown wait timed out, flushing snapshot anyway")
	}

	if err := m.store.Save(); err != nil {
		log.Printf("pool: final snapshot write failed: %v", err)
	}
}

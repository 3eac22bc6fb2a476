package pool

import (
	"context"
	"log"
	"time"
)

// healthLoop is the Health Loop: every healthInterval it probes every
// currently-active descriptor concurrently, bounded at
// healthConcurrency in-flight probes.
func (m *Manager) healthLoop() {
	defer m.wg.Done()
	log.Println("pool: health loop started")

	ticker := time.NewTicker(m.healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runHealthPass(m.shutdownCtx)
		case <-m.shutdownCtx.Done():
			log.Println("pool: health loop stopping")
			return
		}
	}
}

func (m *Manager) runHealthPass(ctx context.Context) {
	active := m.store.ActiveSnapshot()
	if len(active) == 0 {
		return
	}

	sem := make(chan struct{}, m.healthConcurrency)
	results := make(chan struct{}, len(active))

	for _, d := range active {
		d := d
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		go func() {
			defer func() { <-sem; results <- struct{}{} }()
			m.probeOne(ctx, d)
		}()
	}

	for i := 0; i < len(active); i++ {
		select {
		case <-results:
		case <-ctx.Done():
			return
		}
	}

	if err := m.store.Save(); err != nil {
		log.Printf("pool: snapshot write failed after health pass: %v", err)
	}
}

// probeOne validates a single descriptor and records the outcome.
// A panicking Validator is treated as a failed probe: exceptions from
// an individual probe must never affect other proxies.
func (m *Manager) probeOne(ctx context.Context, d *Descriptor) {
	proxyURL := d.ProxyURL()

	start := time.Now()
	ok := m.safeValidate(ctx, proxyURL)
	elapsedMs := time.Since(start).Milliseconds()

	m.store.RecordHealthResult(d.Key(), ok, elapsedMs, time.Now())
}

func (m *Manager) safeValidate(ctx context.Context, proxyURL string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pool: health probe for %s panicked: %v", proxyURL, r)
			ok = false
		}
	}()
	return m.validator.Validate(ctx, proxyURL)
}

package pool

import (
	"context"
	"log"
	"time"
)

// refreshLoop is the Refresh Loop: every refreshInterval it checks
// whether the pool is due for a refresh and, if so, pulls from the
// provider and merges. Provider failure is logged and does not stop
// the loop; the next tick retries after refreshRetryInterval instead
// of the normal interval.
func (m *Manager) refreshLoop() {
	defer m.wg.Done()
	log.Println("pool: refresh loop started")

	interval := m.refreshInterval
	for {
		select {
		case <-time.After(interval):
			if m.maybeRefresh(m.shutdownCtx) {
				interval = m.refreshInterval
			} else {
				interval = m.refreshRetryInterval
			}
		case <-m.shutdownCtx.Done():
			log.Println("pool: refresh loop stopping")
			return
		}
	}
}

// maybeRefresh refreshes only if the store is due; it reports success
// (true) when no provider fetch was attempted or the fetch succeeded.
func (m *Manager) maybeRefresh(ctx context.Context) bool {
	if !m.store.DueForRefresh(time.Now(), m.refreshThreshold) {
		return true
	}
	return m.doRefresh(ctx)
}

// doRefresh unconditionally pulls from the provider and merges,
// bypassing the due-for-refresh check — used by maybeRefresh's
// periodic tick and by Manager.Refresh's immediate admin trigger alike.
func (m *Manager) doRefresh(ctx context.Context) bool {
	descriptors, err := m.provider.Fetch(ctx)
	if err != nil {
		log.Printf("pool: provider fetch failed: %v", err)
		return false
	}

	now := time.Now()
	added := m.store.Merge(descriptors, now)
	log.Printf("pool: refresh merged %d new proxies (fetched %d)", added, len(descriptors))

	if err := m.store.Save(); err != nil {
		log.Printf("pool: snapshot write failed after refresh: %v", err)
	}
	return true
}

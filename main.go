package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sequring/proxypoolmgr/config"
	"github.com/sequring/proxypoolmgr/metrics"
	"github.com/sequring/proxypoolmgr/pool"
	"github.com/sequring/proxypoolmgr/provider"
	"github.com/sequring/proxypoolmgr/validator"
	"github.com/sequring/proxypoolmgr/web"
)

const shutdownGracePeriod = 15 * time.Second
const metricsRefreshInterval = 30 * time.Second

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Load()
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("config error: %v", e)
		}
		log.Fatalf("Invalid configuration, aborting.")
	}

	p := provider.Resolve(cfg)
	v := validator.New(cfg.ValidatorTimeout)

	manager := pool.New(pool.Options{
		UseProxies:             cfg.UseProxies,
		SnapshotPath:           cfg.ProxyCachePath,
		RefreshInterval:        cfg.RefreshInterval,
		RefreshThreshold:       cfg.RefreshThreshold,
		RefreshRetryInterval:   cfg.RefreshRetryInterval,
		HealthCheckInterval:    cfg.HealthCheckInterval,
		HealthCheckConcurrency: cfg.HealthCheckConcurrency,
	}, p, v)
	pool.SetDefaultFactory(func() *pool.Manager { return manager })

	exporter := metrics.NewExporter(manager, cfg.MetricsListenAddr)
	exporter.Start()
	go runMetricsRefreshLoop(manager, exporter)

	admin := web.NewAdminServer(manager, cfg.AdminListenAddr, cfg.AdminReloadToken)
	admin.Start()

	log.Printf("Proxy Pool Manager started (proxy_service=%s, use_proxies=%v)", cfg.ProxyService, cfg.UseProxies)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigChan
	log.Printf("Received signal: %v. Shutting down...", s)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	manager.Close(ctx)

	log.Println("Proxy Pool Manager stopped.")
}

// runMetricsRefreshLoop periodically republishes the Manager's state
// into the Prometheus gauges, since gauges are pull-only and the
// Manager has no push hook of its own.
func runMetricsRefreshLoop(manager *pool.Manager, exporter *metrics.Exporter) {
	ticker := time.NewTicker(metricsRefreshInterval)
	defer ticker.Stop()
	for range ticker.C {
		exporter.UpdateProxyMetrics()
	}
}

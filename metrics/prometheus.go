// Package metrics exports Pool Manager state as Prometheus metrics,
// using the same promauto-registered gauge/counter and
// promhttp-served /metrics shape as the teacher's exporter.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sequring/proxypoolmgr/pool"
)

const namespace = "proxypoolmgr"

var (
	poolTotalProxies = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "total_proxies",
		Help:      "Total number of known proxy descriptors, active and blacklisted.",
	})
	poolActiveProxies = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "active_proxies",
		Help:      "Number of proxy descriptors currently eligible for selection.",
	})
	poolBlacklistedProxies = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "blacklisted_proxies",
		Help:      "Number of proxy descriptors tombstoned by the three-strike rule.",
	})
	poolAvgSuccessRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "avg_success_rate_percent",
		Help:      "Weighted average reported success rate across all known proxies.",
	})
	poolAvgResponseTimeMs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "avg_response_time_ms",
		Help:      "Weighted average reported response time across all known proxies, in milliseconds.",
	})
	poolCountryProxies = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "country_proxies",
		Help:      "Number of active proxy descriptors per country.",
	},
		[]string{"country"},
	)
)

var (
	proxyActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "proxy",
		Name:      "active",
		Help:      "Whether a proxy descriptor is currently active (1) or blacklisted (0).",
	},
		[]string{"proxy_key"},
	)
	proxyResponseTimeMs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "proxy",
		Name:      "response_time_ms",
		Help:      "Rolling average response time for a proxy descriptor, in milliseconds.",
	},
		[]string{"proxy_key"},
	)
	proxyFailureCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "proxy",
		Name:      "failure_count",
		Help:      "Consecutive failure count for a proxy descriptor since its last success.",
	},
		[]string{"proxy_key"},
	)
)

var (
	selectorSelectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "selector",
		Name:      "selections_total",
		Help:      "Total number of Select calls that returned a descriptor.",
	})
	selectorEmptyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "selector",
		Name:      "empty_total",
		Help:      "Total number of Select calls that found no matching descriptor.",
	})
	reporterResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reporter",
		Name:      "results_total",
		Help:      "Total number of Report calls, labeled by caller-observed outcome.",
	},
		[]string{"outcome"},
	)
)

// ObserveSelection increments the selector counter for one Select
// call. found distinguishes a served descriptor from an empty pool.
func ObserveSelection(found bool) {
	if found {
		selectorSelectionsTotal.Inc()
	} else {
		selectorEmptyTotal.Inc()
	}
}

// ObserveReport increments the reporter counter for one Report call.
func ObserveReport(success bool) {
	if success {
		reporterResultsTotal.WithLabelValues("success").Inc()
	} else {
		reporterResultsTotal.WithLabelValues("failure").Inc()
	}
}

// Exporter polls a pool.Manager on demand and republishes its state as
// the gauges above, and serves them over /metrics.
type Exporter struct {
	manager       *pool.Manager
	listenAddress string
}

// NewExporter constructs an Exporter bound to manager.
func NewExporter(manager *pool.Manager, listenAddress string) *Exporter {
	return &Exporter{manager: manager, listenAddress: listenAddress}
}

// Start launches the /metrics HTTP server in the background. A blank
// listen address disables the endpoint entirely.
func (e *Exporter) Start() {
	if e.listenAddress == "" {
		log.Println("Prometheus metrics endpoint is disabled (no listen address specified).")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		log.Printf("Starting Prometheus metrics HTTP server on %s/metrics", e.listenAddress)
		if err := http.ListenAndServe(e.listenAddress, mux); err != nil {
			log.Printf("Error starting Prometheus metrics HTTP server: %v", err)
		}
	}()
}

// UpdateProxyMetrics refreshes every gauge from the Manager's current
// state. Callers are expected to invoke this periodically (the Refresh
// and Health loops are a natural cadence) since gauges are pull-only.
func (e *Exporter) UpdateProxyMetrics() {
	stats := e.manager.Stats()

	poolTotalProxies.Set(float64(stats.TotalProxies))
	poolActiveProxies.Set(float64(stats.ActiveProxies))
	poolBlacklistedProxies.Set(float64(stats.BlacklistedProxies))
	poolAvgSuccessRate.Set(stats.AvgSuccessRate)
	poolAvgResponseTimeMs.Set(stats.AvgResponseTimeMs)

	for country, count := range stats.Countries {
		poolCountryProxies.WithLabelValues(country).Set(float64(count))
	}

	for _, d := range e.manager.ActiveDescriptors() {
		proxyKey := d.Key()
		proxyActive.WithLabelValues(proxyKey).Set(1)
		proxyResponseTimeMs.WithLabelValues(proxyKey).Set(float64(d.AvgResponseTimeMs))
		proxyFailureCount.WithLabelValues(proxyKey).Set(float64(d.FailureCount))
	}
	for _, d := range e.manager.BlacklistedDescriptors() {
		proxyKey := d.Key()
		proxyActive.WithLabelValues(proxyKey).Set(0)
		proxyFailureCount.WithLabelValues(proxyKey).Set(float64(d.FailureCount))
	}
}

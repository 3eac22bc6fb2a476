// Package config loads the Pool Manager's environment-driven
// configuration, in the same load-then-default shape the teacher's
// config package applies to its JSON-backed App settings.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/sequring/proxypoolmgr/utils"
)

const (
	DefaultProxyCachePath         = "proxy_cache.json"
	DefaultStaticProxyListPath    = "proxies.yaml"
	DefaultRefreshInterval        = 5 * time.Minute
	DefaultRefreshThreshold       = time.Hour
	DefaultRefreshRetryInterval   = 60 * time.Second
	DefaultHealthCheckInterval    = 15 * time.Minute
	DefaultHealthCheckConcurrency = 32
	DefaultValidatorTimeout       = 10 * time.Second
	DefaultMetricsListenAddr      = ":9091"
)

// Config is the full set of recognised environment keys: spec.md §6's
// core keys plus the ambient ones SPEC_FULL.md §6 adds.
type Config struct {
	UseProxies   bool
	ProxyService string

	LuminatiUsername string
	LuminatiPassword string
	LuminatiZone     string

	SmartproxyUsername string
	SmartproxyPassword string
	OxylabsUsername    string
	OxylabsPassword    string

	ProxyCachePath      string
	StaticProxyListPath string

	RefreshInterval      time.Duration
	RefreshThreshold     time.Duration
	RefreshRetryInterval time.Duration

	HealthCheckInterval    time.Duration
	HealthCheckConcurrency int
	ValidatorTimeout       time.Duration

	AdminListenAddr  string
	AdminReloadToken string

	MetricsListenAddr string
}

// Load reads configuration from the environment and applies defaults,
// auto-generating an admin reload token when an admin address is
// configured but no token was given.
func Load() *Config {
	cfg := &Config{
		UseProxies:   parseBool(os.Getenv("USE_PROXIES"), false),
		ProxyService: getEnvDefault("PROXY_SERVICE", "luminati"),

		LuminatiUsername: os.Getenv("LUMINATI_USERNAME"),
		LuminatiPassword: os.Getenv("LUMINATI_PASSWORD"),
		LuminatiZone:     os.Getenv("LUMINATI_ZONE"),

		SmartproxyUsername: os.Getenv("SMARTPROXY_USERNAME"),
		SmartproxyPassword: os.Getenv("SMARTPROXY_PASSWORD"),
		OxylabsUsername:    os.Getenv("OXYLABS_USERNAME"),
		OxylabsPassword:    os.Getenv("OXYLABS_PASSWORD"),

		ProxyCachePath:      getEnvDefault("PROXY_CACHE_PATH", DefaultProxyCachePath),
		StaticProxyListPath: getEnvDefault("STATIC_PROXY_LIST_PATH", DefaultStaticProxyListPath),

		RefreshInterval:      durationEnv("REFRESH_INTERVAL_SECONDS", DefaultRefreshInterval),
		RefreshThreshold:     durationEnv("REFRESH_THRESHOLD_SECONDS", DefaultRefreshThreshold),
		RefreshRetryInterval: durationEnv("REFRESH_RETRY_INTERVAL_SECONDS", DefaultRefreshRetryInterval),

		HealthCheckInterval:    durationEnv("HEALTH_CHECK_INTERVAL_SECONDS", DefaultHealthCheckInterval),
		HealthCheckConcurrency: intEnv("HEALTH_CHECK_CONCURRENCY", DefaultHealthCheckConcurrency),
		ValidatorTimeout:       durationEnv("VALIDATOR_TIMEOUT_SECONDS", DefaultValidatorTimeout),

		AdminListenAddr:   os.Getenv("ADMIN_LISTEN_ADDR"),
		AdminReloadToken:  os.Getenv("ADMIN_RELOAD_TOKEN"),
		MetricsListenAddr: getEnvDefault("METRICS_LISTEN_ADDR", DefaultMetricsListenAddr),
	}

	if cfg.AdminListenAddr != "" && cfg.AdminReloadToken == "" {
		token, err := utils.GenerateRandomToken(24)
		if err != nil {
			log.Printf("Error generating admin reload token: %v. Admin endpoints will reject all requests.", err)
		} else {
			cfg.AdminReloadToken = token
			log.Printf("Warning: ADMIN_LISTEN_ADDR is set but ADMIN_RELOAD_TOKEN is not. Generating one.")
			log.Printf("======== ADMIN RELOAD TOKEN (save this!) ========")
			log.Printf("Token: %s", token)
			log.Printf("==================================================")
		}
	}

	return cfg
}

func getEnvDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: invalid bool value %q, using default %v", v, def)
		return def
	}
	return b
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("config: invalid int value %q for %s, using default %d", v, key, def)
		return def
	}
	return n
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		log.Printf("config: invalid duration value %q for %s, using default %s", v, key, def)
		return def
	}
	return time.Duration(secs) * time.Second
}

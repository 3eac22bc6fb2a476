// Package provider resolves the configured upstream proxy source into
// a pool.Provider, mirroring the factory/aliasing shape of the
// original scraper's get_provider().
package provider

import (
	"log"
	"strings"

	"github.com/sequring/proxypoolmgr/config"
	"github.com/sequring/proxypoolmgr/pool"
)

var aliases = map[string]string{
	"luminati":   "luminati",
	"brightdata": "luminati",
}

// Resolve builds the pool.Provider named by cfg.ProxyService. An
// unknown name falls back to the static_list provider with a warning,
// the same graceful-degradation behaviour the original factory uses.
func Resolve(cfg *config.Config) pool.Provider {
	name := aliases[strings.ToLower(cfg.ProxyService)]
	if name == "" {
		name = strings.ToLower(cfg.ProxyService)
	}

	switch name {
	case "luminati":
		return NewLuminati(cfg.LuminatiUsername, cfg.LuminatiPassword, cfg.LuminatiZone)
	case "static_list":
		return NewStaticList(cfg.StaticProxyListPath)
	default:
		log.Printf("provider: unknown proxy_service %q, falling back to static_list", cfg.ProxyService)
		return NewStaticList(cfg.StaticProxyListPath)
	}
}

package config

import "fmt"

var validProxyServices = map[string]bool{
	"luminati":    true,
	"static_list": true,
}

// Validate aggregates every configuration problem into a single slice
// of errors, in the same shape as the teacher's App.Validate.
func (c *Config) Validate() []error {
	var errs []error

	if !c.UseProxies {
		return errs
	}

	if !validProxyServices[c.ProxyService] {
		errs = append(errs, fmt.Errorf("unknown proxy_service %q, expected one of luminati, static_list", c.ProxyService))
	}

	if c.ProxyService == "luminati" {
		if c.LuminatiUsername == "" {
			errs = append(errs, fmt.Errorf("LUMINATI_USERNAME must be set when PROXY_SERVICE=luminati"))
		}
		if c.LuminatiPassword == "" {
			errs = append(errs, fmt.Errorf("LUMINATI_PASSWORD must be set when PROXY_SERVICE=luminati"))
		}
		if c.LuminatiZone == "" {
			errs = append(errs, fmt.Errorf("LUMINATI_ZONE must be set when PROXY_SERVICE=luminati"))
		}
	}

	if c.ProxyService == "static_list" && c.StaticProxyListPath == "" {
		errs = append(errs, fmt.Errorf("static_proxy_list_path must be set when PROXY_SERVICE=static_list"))
	}

	if c.ProxyCachePath == "" {
		errs = append(errs, fmt.Errorf("proxy_cache_path must be set"))
	}

	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval))
	}
	if c.HealthCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("health_check_interval must be positive, got %s", c.HealthCheckInterval))
	}
	if c.HealthCheckConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("health_check_concurrency must be positive, got %d", c.HealthCheckConcurrency))
	}
	if c.ValidatorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("validator_timeout must be positive, got %s", c.ValidatorTimeout))
	}

	if c.AdminListenAddr != "" && c.AdminReloadToken == "" {
		errs = append(errs, fmt.Errorf("internal error: admin_reload_token is unexpectedly empty with admin_listen_addr set"))
	}

	return errs
}

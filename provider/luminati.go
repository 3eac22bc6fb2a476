package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sequring/proxypoolmgr/pool"
)

const (
	luminatiHost      = "zproxy.lum-superproxy.io"
	luminatiPort      = 22225
	luminatiAPIBase   = "https://luminati.io/api"
	luminatiRotatingN = 5
)

// luminatiCountries mirrors the original provider's fixed country list.
var luminatiCountries = []string{
	"us", "gb", "ca", "de", "fr", "au", "jp", "it", "nl",
	"br", "es", "in", "mx", "sg", "kr", "ch", "se", "no",
}

// Luminati is the Bright Data/Luminati zone-proxy provider. When a
// zone is configured it synthesizes descriptors locally; otherwise it
// attempts to enumerate zones over the Luminati REST API and falls
// back to local synthesis on any failure.
type Luminati struct {
	username string
	password string
	zone     string

	httpClient *http.Client
}

// NewLuminati constructs a Luminati provider.
func NewLuminati(username, password, zone string) *Luminati {
	return &Luminati{
		username:   username,
		password:   password,
		zone:       zone,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch implements pool.Provider.
func (l *Luminati) Fetch(ctx context.Context) ([]pool.Descriptor, error) {
	if l.username == "" || l.password == "" {
		return nil, fmt.Errorf("luminati: LUMINATI_USERNAME and LUMINATI_PASSWORD must be set")
	}

	if l.zone != "" {
		log.Printf("luminati: using zone-based configuration: %s", l.zone)
		return l.zoneProxies(l.zone), nil
	}

	log.Printf("luminati: no zone configured, attempting zone enumeration via REST API")
	zones, err := l.fetchZones(ctx)
	if err != nil || len(zones) == 0 {
		if err != nil {
			log.Printf("luminati: zone enumeration failed, falling back to default zone synthesis: %v", err)
		} else {
			log.Printf("luminati: no zones returned by account, falling back to default zone synthesis")
		}
		return l.zoneProxies(""), nil
	}

	var all []pool.Descriptor
	for _, z := range zones {
		all = append(all, l.zoneProxies(z)...)
	}
	return all, nil
}

// zoneProxies synthesizes one descriptor per country plus a handful
// of country-agnostic rotating descriptors, all sharing the
// superproxy host:port but distinguished by username.
func (l *Luminati) zoneProxies(zone string) []pool.Descriptor {
	var out []pool.Descriptor

	for _, country := range luminatiCountries {
		out = append(out, pool.Descriptor{
			Host:         luminatiHost,
			Port:         luminatiPort,
			Protocol:     "http",
			Username:     l.sessionUsername(zone, country),
			Password:     l.password,
			Country:      country,
			ProviderName: "luminati",
			Zone:         zone,
			IsActive:     true,
		})
	}

	for i := 0; i < luminatiRotatingN; i++ {
		out = append(out, pool.Descriptor{
			Host:         luminatiHost,
			Port:         luminatiPort,
			Protocol:     "http",
			Username:     l.sessionUsername(zone, ""),
			Password:     l.password,
			Country:      "any",
			ProviderName: "luminati",
			Zone:         zone,
			IsActive:     true,
		})
	}

	return out
}

// sessionUsername builds the embedded-parameter username Luminati
// expects: "{user}-zone-{zone}[-country-{cc}]". Per-session descriptors
// additionally embed a random 5-digit session id into the username;
// that is a distinct feature from these rotating entries and is not
// synthesized here.
func (l *Luminati) sessionUsername(zone, country string) string {
	u := l.username
	if zone != "" {
		u += "-zone-" + zone
	}
	if country != "" {
		u += "-country-" + country
	}
	return u
}

type luminatiZonesResponse struct {
	Zones []struct {
		Name string `json:"name"`
	} `json:"zones"`
}

// fetchZones calls the Luminati REST API for the account's configured
// zones, using HTTP Basic authentication.
func (l *Luminati) fetchZones(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, luminatiAPIBase+"/zones", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(l.username, l.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("luminati: zones endpoint returned status %d", resp.StatusCode)
	}

	var parsed luminatiZonesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("luminati: failed to decode zones response: %w", err)
	}

	names := make([]string, 0, len(parsed.Zones))
	for _, z := range parsed.Zones {
		if z.Name != "" {
			names = append(names, z.Name)
		}
	}
	return names, nil
}

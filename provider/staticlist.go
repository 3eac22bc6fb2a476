package provider

import (
	"context"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sequring/proxypoolmgr/pool"
)

// staticEntry is one line of the YAML proxy list file.
type staticEntry struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Protocol string `yaml:"protocol"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Country  string `yaml:"country"`
}

type staticFile struct {
	Proxies []staticEntry `yaml:"proxies"`
}

// StaticList is the fallback provider: a hand-maintained YAML file of
// proxy entries, used when no managed proxy service is configured.
type StaticList struct {
	path string
}

// NewStaticList constructs a StaticList provider reading from path.
func NewStaticList(path string) *StaticList {
	return &StaticList{path: path}
}

// Fetch implements pool.Provider. A missing file yields an empty list
// rather than an error, so a provider with no static list configured
// never aborts a refresh; malformed entries are skipped with a warning
// rather than failing the whole fetch.
func (s *StaticList) Fetch(ctx context.Context) ([]pool.Descriptor, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("static_list: %s does not exist, yielding an empty list", s.path)
			return nil, nil
		}
		return nil, fmt.Errorf("static_list: failed to read %s: %w", s.path, err)
	}

	var parsed staticFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("static_list: failed to parse %s: %w", s.path, err)
	}

	var out []pool.Descriptor
	for i, e := range parsed.Proxies {
		if e.Host == "" || e.Port == 0 {
			log.Printf("static_list: skipping entry #%d: host and port are required", i+1)
			continue
		}
		protocol := e.Protocol
		if protocol == "" {
			protocol = "http"
		}
		out = append(out, pool.Descriptor{
			Host:         e.Host,
			Port:         e.Port,
			Protocol:     protocol,
			Username:     e.Username,
			Password:     e.Password,
			Country:      e.Country,
			ProviderName: "static_list",
			IsActive:     true,
		})
	}

	return out, nil
}

// Package config loads provider configuration: a plain URL-per-line
// registry file (spec.md §6.4) and an optional richer YAML file carrying
// per-provider cache TTL, rate limit, and federation include/exclude
// patterns, grounded on the teacher's registry.FederationConfig
// (runtime/registry/manager.go).
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadProviderList reads a plain registry file: one provider URL per line,
// blank lines and lines starting with "#" ignored (spec.md §6.4).
func LoadProviderList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening provider list %q: %w", path, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading provider list %q: %w", path, err)
	}
	return urls, nil
}

// FederationConfig restricts which types a provider's data federates into,
// mirroring registry.FederationConfig's Include/Exclude namespace patterns
// narrowed to this domain's object types instead of MCP toolset namespaces.
type FederationConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// ProviderSettings holds one provider's optional overrides; fields left at
// their zero value fall back to the driver's defaults (unlimited rate, the
// driver's default cache TTL).
type ProviderSettings struct {
	URL string `yaml:"url"`

	// CacheTTL overrides how long this provider's fetched payloads stay
	// cached. Zero means "use the driver's default".
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`

	// RateLimitPerSecond and RateLimitBurst configure this provider's
	// golang.org/x/time/rate limiter in the driver. Zero
	// RateLimitPerSecond means unthrottled.
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second,omitempty"`
	RateLimitBurst     int     `yaml:"rate_limit_burst,omitempty"`

	Federation *FederationConfig `yaml:"federation,omitempty"`
}

// ProviderConfig is the parsed form of a providers.yaml file.
type ProviderConfig struct {
	Version   int                `yaml:"version"`
	Providers []ProviderSettings `yaml:"providers"`
}

// LoadProviderConfig parses a providers.yaml file (§2's ambient config
// addition). Absent from a deployment that only supplies the plain
// LoadProviderList file — every field here is optional, so callers that
// skip this file get default behavior for every provider.
func LoadProviderConfig(path string) (*ProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading provider config %q: %w", path, err)
	}
	var cfg ProviderConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing provider config %q: %w", path, err)
	}
	return &cfg, nil
}

// Allows reports whether typeName passes this provider's federation
// include/exclude patterns (registry.Manager.filterFederated's rule:
// exclude wins over include, and an empty Include list admits everything).
func (f *FederationConfig) Allows(typeName string) bool {
	if f == nil {
		return true
	}
	for _, pattern := range f.Exclude {
		if matchPattern(pattern, typeName) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if matchPattern(pattern, typeName) {
			return true
		}
	}
	return false
}

// matchPattern supports an exact match or a trailing "*" prefix wildcard,
// the same matching registry.Manager's pattern filtering provides.
func matchPattern(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == name
}

// Package config provides YAML configuration file loading and validation.
// It handles environment variable expansion, default value application,
// and converts the file into the static defaults used by the settings
// assembler.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dmagro/sitesettings/internal/selector"
	"github.com/dmagro/sitesettings/internal/settings"
)

// Config represents the root configuration structure loaded from YAML.
type Config struct {
	Project       string   `yaml:"project"`        // Project name used to locate vhost files
	VhostDir      string   `yaml:"vhost_dir"`      // Directory holding vhost files (empty = detect from host)
	DrupalVersion int      `yaml:"drupal_version"` // 6 or 7; selects the PHP output flavour
	Defaults      Defaults `yaml:"defaults"`       // Static values applied to every record
	Logging       Logging  `yaml:"logging"`
}

// Defaults mirrors settings.Defaults in YAML form.
type Defaults struct {
	Database            Database     `yaml:"database"`
	Cache               Cache        `yaml:"cache"`
	ReverseProxy        ReverseProxy `yaml:"reverse_proxy"`
	KeyPrefix           string       `yaml:"key_prefix"`            // Used when memcache_prefix is not set
	SolrPort            string       `yaml:"solr_port"`             // e.g. "8983"
	PressflowSmartStart *bool        `yaml:"pressflow_smart_start"` // nil = true
}

// Database holds connection fields that never come from vhost files.
type Database struct {
	Driver string `yaml:"driver"` // e.g. "mysqli" (Drupal 6) or "mysql" (Drupal 7)
	Host   string `yaml:"host"`
	Port   string `yaml:"port"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend         string            `yaml:"backend"`          // memcached | apc | none
	MemcacheServers map[string]string `yaml:"memcache_servers"` // address -> cluster
	MemcacheBins    map[string]string `yaml:"memcache_bins"`    // bin -> cluster
	APC             APC               `yaml:"apc"`
}

// APC configures the Cacherouter APC engine.
type APC struct {
	Prefix    string `yaml:"prefix"`
	Shared    bool   `yaml:"shared"`
	Static    bool   `yaml:"static"`
	FastCache *bool  `yaml:"fast_cache"` // nil = true
}

// ReverseProxy lists trusted upstream proxies.
type ReverseProxy struct {
	Enabled   *bool    `yaml:"enabled"` // nil = true
	Addresses []string `yaml:"addresses"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DrupalVersion == 0 {
		c.DrupalVersion = 6
	}
	d := &c.Defaults
	if d.Database.Driver == "" {
		d.Database.Driver = "mysqli"
		if c.DrupalVersion == 7 {
			d.Database.Driver = "mysql"
		}
	}
	if d.Database.Host == "" {
		d.Database.Host = "localhost"
	}
	if d.Cache.Backend == "" {
		d.Cache.Backend = string(settings.CacheMemcached)
	}
	if len(d.Cache.MemcacheServers) == 0 {
		d.Cache.MemcacheServers = map[string]string{"127.0.0.1:11211": "default"}
	}
	if len(d.Cache.MemcacheBins) == 0 {
		d.Cache.MemcacheBins = map[string]string{"cache": "default"}
	}
	if d.ReverseProxy.Enabled == nil {
		d.ReverseProxy.Enabled = boolPtr(true)
	}
	if len(d.ReverseProxy.Addresses) == 0 {
		d.ReverseProxy.Addresses = []string{"127.0.0.1"}
	}
	if d.SolrPort == "" {
		d.SolrPort = "8983"
	}
	if d.PressflowSmartStart == nil {
		d.PressflowSmartStart = boolPtr(true)
	}
	if d.Cache.APC.FastCache == nil {
		d.Cache.APC.FastCache = boolPtr(true)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate validates the configuration. Suspicious but usable values are
// reported through logger as warnings and do not fail validation.
func (c *Config) Validate(logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.DrupalVersion != 6 && c.DrupalVersion != 7 {
		return fmt.Errorf("drupal_version must be 6 or 7, got %d", c.DrupalVersion)
	}
	if _, err := settings.ParseCacheKind(c.Defaults.Cache.Backend); err != nil {
		return fmt.Errorf("defaults.cache.backend: %w", err)
	}
	for i, addr := range c.Defaults.ReverseProxy.Addresses {
		if addr == "" {
			return fmt.Errorf("defaults.reverse_proxy.addresses[%d] is empty", i)
		}
		if net.ParseIP(addr) == nil {
			logger.Warn("reverse proxy address is not an IP address", zap.String("address", addr))
		}
	}
	for addr := range c.Defaults.Cache.MemcacheServers {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("defaults.cache.memcache_servers: invalid address %q: %w", addr, err)
		}
	}
	if c.Project == "" {
		logger.Warn("no project configured; vhost discovery is disabled unless --project is given")
	}
	return nil
}

// Load reads and parses a YAML configuration file, expanding environment
// variables, applying defaults and validating the result.
//
// Parameters:
//   - path: File path to the YAML configuration file
//   - logger: receives validation warnings (nil discards them)
//
// Returns:
//   - *Config: Parsed and validated configuration
//   - error: File read, parse, or validation error
//
// Environment variable expansion:
//
//	Values can use ${VAR} syntax which will be expanded using os.ExpandEnv().
//	Example: vhost_dir: ${VHOST_ROOT}
func Load(path string, logger *zap.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(logger); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns Default() when path is empty
// or the file does not exist.
func LoadOrDefault(path string, logger *zap.Logger) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path, logger)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ResolvedVhostDir returns VhostDir, or the host default when unset.
func (c *Config) ResolvedVhostDir() string {
	if c.VhostDir != "" {
		return c.VhostDir
	}
	return selector.DefaultVhostDir()
}

// SettingsDefaults converts the YAML defaults into settings.Defaults. Map
// entries are emitted in sorted key order so records are reproducible.
func (c *Config) SettingsDefaults() settings.Defaults {
	d := c.Defaults
	kind, err := settings.ParseCacheKind(d.Cache.Backend)
	if err != nil {
		kind = settings.CacheMemcached
	}

	out := settings.Defaults{
		Database: settings.DatabaseDefaults{
			Driver: d.Database.Driver,
			Host:   d.Database.Host,
			Port:   d.Database.Port,
		},
		CacheKind: kind,
		APC: settings.APC{
			Prefix:    d.Cache.APC.Prefix,
			Shared:    d.Cache.APC.Shared,
			Static:    d.Cache.APC.Static,
			FastCache: boolOr(d.Cache.APC.FastCache, true),
		},
		ReverseProxy: settings.ReverseProxy{
			Enabled:   boolOr(d.ReverseProxy.Enabled, true),
			Addresses: append([]string(nil), d.ReverseProxy.Addresses...),
		},
		KeyPrefix:           d.KeyPrefix,
		SolrPort:            d.SolrPort,
		PressflowSmartStart: boolOr(d.PressflowSmartStart, true),
	}
	for _, addr := range sortedKeys(d.Cache.MemcacheServers) {
		out.MemcacheServers = append(out.MemcacheServers, settings.MemcacheServer{Address: addr, Cluster: d.Cache.MemcacheServers[addr]})
	}
	for _, bin := range sortedKeys(d.Cache.MemcacheBins) {
		out.MemcacheBins = append(out.MemcacheBins, settings.MemcacheBin{Bin: bin, Cluster: d.Cache.MemcacheBins[bin]})
	}
	return out
}

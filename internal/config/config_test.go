package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dmagro/sitesettings/internal/settings"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitesettings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultMatchesSettingsDefaults(t *testing.T) {
	got := Default().SettingsDefaults()
	assert.Equal(t, settings.DefaultDefaults(), got)
}

func TestLoad(t *testing.T) {
	t.Setenv("SITESETTINGS_VHOST_ROOT", "/srv/vhosts/")

	path := writeConfig(t, `
project: myproj
vhost_dir: ${SITESETTINGS_VHOST_ROOT}
drupal_version: 7
defaults:
  cache:
    backend: apc
    apc:
      prefix: site_
  reverse_proxy:
    addresses: [10.0.0.5, 10.0.0.6]
  key_prefix: shared
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "myproj", cfg.Project)
	assert.Equal(t, "/srv/vhosts/", cfg.VhostDir)
	assert.Equal(t, "/srv/vhosts/", cfg.ResolvedVhostDir())

	d := cfg.SettingsDefaults()
	assert.Equal(t, "mysql", d.Database.Driver, "drupal 7 defaults to the mysql driver")
	assert.Equal(t, settings.CacheAPC, d.CacheKind)
	assert.Equal(t, settings.APC{Prefix: "site_", FastCache: true}, d.APC)
	assert.Equal(t, []string{"10.0.0.5", "10.0.0.6"}, d.ReverseProxy.Addresses)
	assert.True(t, d.ReverseProxy.Enabled)
	assert.Equal(t, "shared", d.KeyPrefix)
}

func TestLoadExplicitFalse(t *testing.T) {
	path := writeConfig(t, `
defaults:
  reverse_proxy:
    enabled: false
  pressflow_smart_start: false
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	d := cfg.SettingsDefaults()
	assert.False(t, d.ReverseProxy.Enabled)
	assert.False(t, d.PressflowSmartStart)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "bad_yaml", body: "project: [", wantErr: "failed to parse config"},
		{name: "bad_version", body: "drupal_version: 8", wantErr: "drupal_version"},
		{name: "bad_backend", body: "defaults:\n  cache:\n    backend: redis", wantErr: "unknown cache backend"},
		{name: "empty_proxy", body: "defaults:\n  reverse_proxy:\n    addresses: [\"\"]", wantErr: "is empty"},
		{name: "bad_memcache_addr", body: "defaults:\n  cache:\n    memcache_servers: {localhost: default}", wantErr: "invalid address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	cfg := Default()
	cfg.Defaults.ReverseProxy.Addresses = []string{"varnish.internal"}
	require.NoError(t, cfg.Validate(zap.New(core)))

	assert.Equal(t, 1, logs.FilterMessage("reverse proxy address is not an IP address").Len())
	assert.Equal(t, 1, logs.FilterMessage("no project configured; vhost discovery is disabled unless --project is given").Len())
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.DrupalVersion)

	_, err = LoadOrDefault(writeConfig(t, "drupal_version: 5"), nil)
	assert.Error(t, err)
}

func TestSettingsDefaultsSortsMaps(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Cache.MemcacheServers = map[string]string{
		"10.0.0.2:11211": "b",
		"10.0.0.1:11211": "a",
	}
	d := cfg.SettingsDefaults()
	assert.Equal(t, []settings.MemcacheServer{
		{Address: "10.0.0.1:11211", Cluster: "a"},
		{Address: "10.0.0.2:11211", Cluster: "b"},
	}, d.MemcacheServers)
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("SITESETTINGS_PROJECT", "myproj")

	cfg, err := Load("../../config/sitesettings.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, "myproj", cfg.Project)
	assert.Equal(t, settings.DefaultDefaults(), cfg.SettingsDefaults())
}

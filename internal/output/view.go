package output

import (
	"github.com/dmagro/sitesettings/internal/settings"
)

const maskedSecret = "********"

// RecordView is the machine-readable form of a settings record.
type RecordView struct {
	Environment         string           `json:"environment,omitempty" yaml:"environment,omitempty"`
	Source              string           `json:"source,omitempty" yaml:"source,omitempty"`
	Database            *DatabaseView    `json:"database,omitempty" yaml:"database,omitempty"`
	Cache               CacheView        `json:"cache" yaml:"cache"`
	ReverseProxy        ReverseProxyView `json:"reverse_proxy" yaml:"reverse_proxy"`
	KeyPrefix           string           `json:"key_prefix" yaml:"key_prefix"`
	Solr                SolrView         `json:"solr" yaml:"solr"`
	PressflowSmartStart bool             `json:"pressflow_smart_start" yaml:"pressflow_smart_start"`
	HTTPS               bool             `json:"https" yaml:"https"`
}

// DatabaseView holds connection parameters.
type DatabaseView struct {
	Driver   string `json:"driver" yaml:"driver"`
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port,omitempty" yaml:"port,omitempty"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
	DSN      string `json:"dsn" yaml:"dsn"`
}

// CacheView flattens the cache backend variant.
type CacheView struct {
	Backend   string            `json:"backend" yaml:"backend"`
	Servers   map[string]string `json:"servers,omitempty" yaml:"servers,omitempty"`
	Bins      map[string]string `json:"bins,omitempty" yaml:"bins,omitempty"`
	KeyPrefix string            `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
	Prefix    string            `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Shared    *bool             `json:"shared,omitempty" yaml:"shared,omitempty"`
	Static    *bool             `json:"static,omitempty" yaml:"static,omitempty"`
	FastCache *bool             `json:"fast_cache,omitempty" yaml:"fast_cache,omitempty"`
}

// ReverseProxyView holds the proxy allow-list.
type ReverseProxyView struct {
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Addresses []string `json:"addresses" yaml:"addresses"`
}

// SolrView holds the search endpoint.
type SolrView struct {
	Port          string `json:"port" yaml:"port"`
	Path          string `json:"path,omitempty" yaml:"path,omitempty"`
	DefaultServer string `json:"default_server,omitempty" yaml:"default_server,omitempty"`
}

// NewRecordView converts rec. Passwords are masked unless showSecrets is set.
func NewRecordView(rec settings.Record, showSecrets bool) RecordView {
	v := RecordView{
		Environment: string(rec.Environment),
		Source:      rec.Source,
		Cache:       newCacheView(rec.Cache),
		ReverseProxy: ReverseProxyView{
			Enabled:   rec.ReverseProxy.Enabled,
			Addresses: append([]string{}, rec.ReverseProxy.Addresses...),
		},
		KeyPrefix: rec.KeyPrefix,
		Solr: SolrView{
			Port:          rec.Solr.Port,
			Path:          rec.Solr.Path,
			DefaultServer: rec.Solr.DefaultServer,
		},
		PressflowSmartStart: rec.PressflowSmartStart,
		HTTPS:               rec.HTTPS,
	}

	if db := rec.Database; db != nil {
		v.Database = &DatabaseView{
			Driver:   db.Driver,
			Host:     db.Host,
			Port:     db.Port,
			User:     db.User,
			Password: db.Password,
			Name:     db.Name,
			DSN:      db.DSN(),
		}
		if !showSecrets {
			v.Database.Password = maskedSecret
			v.Database.DSN = db.RedactedDSN()
		}
	}
	return v
}

func newCacheView(c settings.CacheBackend) CacheView {
	switch b := c.(type) {
	case settings.Memcached:
		v := CacheView{
			Backend:   string(b.Kind()),
			Servers:   make(map[string]string, len(b.Servers)),
			Bins:      make(map[string]string, len(b.Bins)),
			KeyPrefix: b.KeyPrefix,
		}
		for _, s := range b.Servers {
			v.Servers[s.Address] = s.Cluster
		}
		for _, bin := range b.Bins {
			v.Bins[bin.Bin] = bin.Cluster
		}
		return v
	case settings.APC:
		return CacheView{
			Backend:   string(b.Kind()),
			Prefix:    b.Prefix,
			Shared:    &b.Shared,
			Static:    &b.Static,
			FastCache: &b.FastCache,
		}
	default:
		return CacheView{Backend: string(settings.CacheNone)}
	}
}

// Package settings assembles a site's configuration record from the
// variables discovered in its vhost file (or the process environment) and a
// set of static defaults.
//
// Assembly never fails. Every missing input degrades to a default or an
// unset field, so callers always get a usable, possibly partial, Record.
package settings

import (
	"github.com/dmagro/sitesettings/internal/env"
	"github.com/dmagro/sitesettings/internal/vhost"
)

// DatabaseDefaults supplies the connection fields that never come from the
// vhost file.
type DatabaseDefaults struct {
	Driver string
	Host   string
	Port   string
}

// Defaults are the static values applied to every record.
type Defaults struct {
	Database            DatabaseDefaults
	CacheKind           CacheKind
	MemcacheServers     []MemcacheServer
	MemcacheBins        []MemcacheBin
	APC                 APC
	ReverseProxy        ReverseProxy
	KeyPrefix           string
	SolrPort            string
	PressflowSmartStart bool
}

// DefaultDefaults matches the stock hosting stack: memcached on localhost,
// Varnish on localhost, Solr on 8983.
func DefaultDefaults() Defaults {
	return Defaults{
		Database:  DatabaseDefaults{Driver: "mysqli", Host: "localhost"},
		CacheKind: CacheMemcached,
		MemcacheServers: []MemcacheServer{
			{Address: "127.0.0.1:11211", Cluster: "default"},
		},
		MemcacheBins: []MemcacheBin{
			{Bin: "cache", Cluster: "default"},
		},
		APC:                 APC{FastCache: true},
		ReverseProxy:        ReverseProxy{Enabled: true, Addresses: []string{"127.0.0.1"}},
		SolrPort:            "8983",
		PressflowSmartStart: true,
	}
}

// Assemble builds a Record from vars and d. The database is only configured
// when db_username, db_password and db_name are all present.
func Assemble(vars vhost.EnvMap, d Defaults) Record {
	rec := Record{
		ReverseProxy: ReverseProxy{
			Enabled:   d.ReverseProxy.Enabled,
			Addresses: append([]string(nil), d.ReverseProxy.Addresses...),
		},
		KeyPrefix: d.KeyPrefix,
		Solr: Solr{
			Port: d.SolrPort,
		},
		PressflowSmartStart: d.PressflowSmartStart,
	}

	if vars.Has(env.DatabaseKeys...) {
		rec.Database = &Database{
			Driver:   d.Database.Driver,
			Host:     d.Database.Host,
			Port:     d.Database.Port,
			User:     vars[env.DBUsername],
			Password: vars[env.DBPassword],
			Name:     vars[env.DBName],
		}
	}

	if prefix, ok := vars.Get(env.MemcachePrefix); ok {
		rec.KeyPrefix = prefix
	}
	if path, ok := vars.Get(env.SolrPath); ok {
		rec.Solr.Path = path
	}
	if name, ok := vars.Get(env.DBName); ok {
		rec.Solr.DefaultServer = name
	}
	rec.HTTPS = vars[env.ForwardedProto] == "https"

	rec.Cache = cacheBackend(d, rec.KeyPrefix)
	return rec
}

func cacheBackend(d Defaults, keyPrefix string) CacheBackend {
	switch d.CacheKind {
	case CacheAPC:
		return d.APC
	case CacheNone:
		return NoCache{}
	default:
		return Memcached{
			Servers:   append([]MemcacheServer(nil), d.MemcacheServers...),
			Bins:      append([]MemcacheBin(nil), d.MemcacheBins...),
			KeyPrefix: keyPrefix,
		}
	}
}

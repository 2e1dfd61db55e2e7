// Package env captures the process environment variables the settings
// loader consumes. The capture is an explicit, immutable map: nothing in this
// package calls os.Setenv, so loading a .env file never leaks into the
// process.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmagro/sitesettings/internal/vhost"
)

// Variables read by the settings loader.
const (
	DBUsername     = "db_username"
	DBPassword     = "db_password"
	DBName         = "db_name"
	SolrPath       = "solr_path"
	MemcachePrefix = "memcache_prefix"
	PWD            = "PWD"
	ForwardedProto = "HTTP_X_FORWARDED_PROTO"
)

// Keys lists every variable captured by Snapshot.
var Keys = []string{DBUsername, DBPassword, DBName, SolrPath, MemcachePrefix, PWD, ForwardedProto}

// DatabaseKeys are the variables that must all be present for a database
// connection to be configured.
var DatabaseKeys = []string{DBUsername, DBPassword, DBName}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Snapshot captures Keys through lookup. Unset variables are absent from the
// result; variables set to the empty string are kept.
func Snapshot(lookup LookupFunc) vhost.EnvMap {
	out := make(vhost.EnvMap, len(Keys))
	for _, k := range Keys {
		if v, ok := lookup(k); ok {
			out[k] = v
		}
	}
	return out
}

// FromOS captures Keys from the process environment.
func FromOS() vhost.EnvMap {
	return Snapshot(os.LookupEnv)
}

// FromMap adapts a plain map to a LookupFunc.
func FromMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// LoadDotEnv reads KEY=VALUE pairs from a .env file without touching the
// process environment. Comments, an "export " prefix and quoted values are
// handled by godotenv.
//
// A missing file yields an empty map and no error, so the tool works without
// one.
func LoadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return vars, nil
}

// ParseDotEnv parses .env file contents. See LoadDotEnv for the format.
func ParseDotEnv(text string) (map[string]string, error) {
	vars, err := godotenv.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file: %w", err)
	}
	return vars, nil
}

// Merge returns a LookupFunc that consults each source in order and returns
// the first hit. Pass the .env map before os.LookupEnv to let the file win.
func Merge(sources ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for _, src := range sources {
			if v, ok := src(key); ok {
				return v, true
			}
		}
		return "", false
	}
}

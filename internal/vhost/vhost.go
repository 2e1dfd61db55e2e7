// Package vhost extracts per-environment variables from Apache virtual-host
// files. Provisioning writes those variables as SetEnv directives, one per
// line:
//
//	SetEnv db_username alice
//	SetEnv db_password secret
//	SetEnv db_name mysite
//
// Everything else in the file is ignored.
package vhost

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// Keyword marks a line as carrying an environment variable.
const Keyword = "SetEnv"

// Directive is one SetEnv name/value pair.
type Directive struct {
	Name  string
	Value string
}

// EnvMap maps directive names to values. Later directives for the same
// name overwrite earlier ones.
type EnvMap map[string]string

// Get returns the value for name and whether it was set.
func (m EnvMap) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Has reports whether every name is present.
func (m EnvMap) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := m[n]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy. A nil map clones to an empty one.
func (m EnvMap) Clone() EnvMap {
	out := make(EnvMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Overlay returns a new map holding m with every entry of top written over it.
func (m EnvMap) Overlay(top EnvMap) EnvMap {
	out := m.Clone()
	for k, v := range top {
		out[k] = v
	}
	return out
}

// Keys returns the names in sorted order.
func (m EnvMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lines splits raw file contents into trimmed, non-empty lines.
func Lines(text string) []string {
	if text == "" {
		return []string{}
	}
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseDirective returns the directive carried by line. Lines that do not
// contain the SetEnv keyword, or that have fewer than three
// whitespace-separated tokens, yield false. Tokens past the third are ignored.
func ParseDirective(line string) (Directive, bool) {
	if !strings.Contains(line, Keyword) {
		return Directive{}, false
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Directive{}, false
	}
	return Directive{Name: fields[1], Value: fields[2]}, true
}

// Build folds directives into an EnvMap, last write wins.
func Build(directives []Directive) EnvMap {
	m := make(EnvMap, len(directives))
	for _, d := range directives {
		m[d.Name] = d.Value
	}
	return m
}

// Directives returns every directive found in text, in file order.
func Directives(text string) []Directive {
	var out []Directive
	for _, line := range Lines(text) {
		if d, ok := ParseDirective(line); ok {
			out = append(out, d)
		}
	}
	return out
}

// Parse runs the full scan/extract/build pipeline over file contents.
func Parse(text string) EnvMap {
	return Build(Directives(text))
}

// ReadFile reads and parses the vhost file at path. A missing file is not an
// error and yields an empty map. Other read failures also yield an empty map,
// together with the error so the caller can report it.
func ReadFile(path string) (EnvMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EnvMap{}, nil
		}
		return EnvMap{}, fmt.Errorf("failed to read vhost file %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Format renders m as SetEnv lines sorted by name.
func Format(m EnvMap) string {
	var b strings.Builder
	for _, k := range m.Keys() {
		fmt.Fprintf(&b, "%s %s %s\n", Keyword, k, m[k])
	}
	return b.String()
}

// Package template renders provisioning templates that use ${name}
// placeholders. Substitution is "safe": placeholders without a value are
// left untouched so PHP variables such as $conf survive rendering.
package template

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed templates/*
var builtinFS embed.FS

// $$ | ${name} | $name
var placeholder = regexp.MustCompile(`\$(?:(\$)|\{([_a-zA-Z][_a-zA-Z0-9]*)\}|([_a-zA-Z][_a-zA-Z0-9]*))`)

// Render substitutes values into text. "$$" renders as a literal "$".
func Render(text string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		name, escaped := tokenName(match)
		if escaped {
			return "$"
		}
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}

// Tokens returns the distinct placeholder names in text, sorted.
func Tokens(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholder.FindAllString(text, -1) {
		if name, escaped := tokenName(m); !escaped {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Missing returns the braced placeholders in text that values does not
// cover. Bare $name references are skipped since they are usually PHP.
func Missing(text string, values map[string]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, sub := range placeholder.FindAllStringSubmatch(text, -1) {
		name := sub[2]
		if name == "" {
			continue
		}
		if _, ok := values[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func tokenName(match string) (name string, escaped bool) {
	if match == "$$" {
		return "", true
	}
	return strings.Trim(strings.TrimPrefix(match, "$"), "{}"), false
}

// Builtins lists the names of the embedded templates.
func Builtins() []string {
	entries, err := fs.ReadDir(builtinFS, "templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Builtin returns the contents of an embedded template.
func Builtin(name string) (string, error) {
	data, err := builtinFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("unknown builtin template %q (available: %s)", name, strings.Join(Builtins(), ", "))
	}
	return string(data), nil
}

package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/dmagro/sitesettings/internal/settings"
)

// Drupal major versions supported by RenderPHP.
const (
	Drupal6 = 6
	Drupal7 = 7
)

var phpFuncs = template.FuncMap{
	"php":     phpString,
	"bool":    phpBool,
	"comment": phpComment,
	"driver7": drupal7Driver,
}

// Shared by both versions.
const phpCommon = `{{define "proxy"}}
/* Varnish */
$conf['reverse_proxy'] = {{bool .ReverseProxy.Enabled}};
$conf['reverse_proxy_addresses'] = array({{range $i, $a := .ReverseProxy.Addresses}}{{if $i}}, {{end}}{{php $a}}{{end}});
{{end}}{{define "memcache_maps"}}$conf['memcache_servers'] = array(
{{- range .Servers}}
  {{php .Address}} => {{php .Cluster}},
{{- end}}
);
$conf['memcache_bins'] = array(
{{- range .Bins}}
  {{php .Bin}} => {{php .Cluster}},
{{- end}}
);
$conf['memcache_key_prefix'] = {{php .KeyPrefix}};
{{end}}{{define "https"}}{{if .HTTPS}}
$_SERVER['HTTPS'] = 'on';
{{end}}{{end}}`

const php6 = `<?php
{{template "header" .}}
{{- if .Database}}
$db_url = {{php .Database.DSN}};
{{end}}
$conf['pressflow_smart_start'] = {{bool .PressflowSmartStart}};
{{template "proxy" .}}
/* Apache Solr */
$conf['apachesolr_port'] = {{php .Solr.Port}};
$conf['apachesolr_path'] = {{php .Solr.Path}};
{{with memcached .Cache}}
/* Memcached */
$conf['cache_inc'] = './sites/all/modules/memcache/memcache.inc';
{{template "memcache_maps" .}}{{end}}{{with apc .Cache}}
/* Cacherouter: APC for local caching */
$conf['cache_inc'] = './sites/all/modules/cacherouter/cacherouter.inc';
$conf['cacherouter'] = array(
  'default' => array(
    'engine' => 'apc',
    'shared' => {{bool .Shared}},
    'prefix' => {{php .Prefix}},
    'static' => {{bool .Static}},
    'fast_cache' => {{bool .FastCache}},
  ),
);
{{end}}{{template "https" .}}`

const php7 = `<?php
{{template "header" .}}
{{- with .Database}}
$databases = array(
  'default' => array(
    'default' => array(
      'database' => {{php .Name}},
      'username' => {{php .User}},
      'password' => {{php .Password}},
      'host' => {{php .Host}},
      'port' => {{php .Port}},
      'driver' => {{php (driver7 .Driver)}},
      'prefix' => '',
    ),
  ),
);
{{end}}
$conf['pressflow_smart_start'] = {{bool .PressflowSmartStart}};

/* Apache Solr */
$conf['apachesolr_default_server'] = {{php .Solr.DefaultServer}};
{{with memcached .Cache}}
/* Memcached */
$conf['cache_backends'][] = 'sites/all/modules/memcache/memcache.inc';
$conf['cache_default_class'] = 'MemCacheDrupal';
{{template "memcache_maps" .}}{{end}}{{with apc .Cache}}
/* APC */
$conf['cache_backends'][] = 'sites/all/modules/apc/drupal_apc_cache.inc';
$conf['cache_default_class'] = 'DrupalAPCCache';
$conf['cache_prefix'] = {{php .Prefix}};
{{end}}{{template "proxy" .}}$conf['page_cache_invoke_hooks'] = FALSE;
{{template "https" .}}`

const phpHeader = `{{define "header"}}
// Generated by sitesettings.
{{- if .Environment}} Environment: {{comment (print .Environment)}}.{{end}}
{{- if .Source}} Source: {{comment .Source}}.{{end}}
{{end}}`

var phpTemplates = map[int]*template.Template{
	Drupal6: mustPHPTemplate("drupal6", php6),
	Drupal7: mustPHPTemplate("drupal7", php7),
}

func mustPHPTemplate(name, body string) *template.Template {
	funcs := template.FuncMap{
		"memcached": func(c settings.CacheBackend) *settings.Memcached {
			if m, ok := c.(settings.Memcached); ok {
				return &m
			}
			return nil
		},
		"apc": func(c settings.CacheBackend) *settings.APC {
			if a, ok := c.(settings.APC); ok {
				return &a
			}
			return nil
		},
	}
	for k, v := range phpFuncs {
		funcs[k] = v
	}
	t := template.Must(template.New(name).Funcs(funcs).Parse(body))
	template.Must(t.Parse(phpCommon))
	template.Must(t.Parse(phpHeader))
	return t
}

// RenderPHP writes rec as a settings.php include for the given Drupal
// major version.
func RenderPHP(w io.Writer, rec settings.Record, drupalVersion int) error {
	t, ok := phpTemplates[drupalVersion]
	if !ok {
		return fmt.Errorf("unsupported drupal version %d (expected 6 or 7)", drupalVersion)
	}
	if err := t.Execute(w, rec); err != nil {
		return fmt.Errorf("failed to render settings.php: %w", err)
	}
	return nil
}

// phpString quotes s as a single-quoted PHP literal.
func phpString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// phpComment makes s safe inside a // comment: a newline or "?>" would end
// the comment early.
func phpComment(s string) string {
	r := strings.NewReplacer("\r", " ", "\n", " ", "?>", "? >")
	return r.Replace(s)
}

// drupal7Driver maps the Drupal 6 mysqli driver name to the one Drupal 7
// knows. Drupal 7 has no mysqli driver.
func drupal7Driver(driver string) string {
	if driver == "mysqli" {
		return "mysql"
	}
	return driver
}

func phpBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

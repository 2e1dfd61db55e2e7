package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/dmagro/sitesettings/internal/inventory"
	"github.com/dmagro/sitesettings/internal/settings"
	"github.com/dmagro/sitesettings/internal/vhost"
)

// Colors for status indicators
var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func newTable(w io.Writer, columns ...interface{}) table.Table {
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New(columns...)
	tbl.WithHeaderFormatter(headerFmt)
	tbl.WithWriter(w)
	return tbl
}

// RenderRecordTerminal prints a settings record as grouped key/value tables.
func RenderRecordTerminal(w io.Writer, rec settings.Record, showSecrets bool) {
	v := NewRecordView(rec, showSecrets)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", bold("Site settings"), describeSource(v))
	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("Database"))
	if v.Database == nil {
		fmt.Fprintf(w, "  %s\n\n", yellow("not configured (db_username, db_password and db_name are required)"))
	} else {
		tbl := newTable(w, "Field", "Value")
		tbl.AddRow("driver", v.Database.Driver)
		tbl.AddRow("host", hostPort(v.Database.Host, v.Database.Port))
		tbl.AddRow("user", v.Database.User)
		tbl.AddRow("password", v.Database.Password)
		tbl.AddRow("name", v.Database.Name)
		tbl.AddRow("dsn", v.Database.DSN)
		tbl.Print()
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, bold("Cache"))
	renderCache(w, v.Cache)

	fmt.Fprintln(w, bold("Reverse proxy"))
	tbl := newTable(w, "Field", "Value")
	tbl.AddRow("enabled", formatBool(v.ReverseProxy.Enabled))
	tbl.AddRow("addresses", strings.Join(v.ReverseProxy.Addresses, ", "))
	tbl.Print()
	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("Other"))
	tbl = newTable(w, "Field", "Value")
	tbl.AddRow("key prefix", orDash(v.KeyPrefix))
	tbl.AddRow("solr port", orDash(v.Solr.Port))
	tbl.AddRow("solr path", orDash(v.Solr.Path))
	tbl.AddRow("solr default server", orDash(v.Solr.DefaultServer))
	tbl.AddRow("pressflow smart start", formatBool(v.PressflowSmartStart))
	tbl.AddRow("https", formatBool(v.HTTPS))
	tbl.Print()
	fmt.Fprintln(w)
}

func describeSource(v RecordView) string {
	switch {
	case v.Source == settings.SourceEnvironment:
		return cyan("(from environment variables)")
	case v.Source != "":
		return cyan(fmt.Sprintf("(%s: %s)", v.Environment, v.Source))
	default:
		return yellow("(defaults only, no vhost file selected)")
	}
}

func renderCache(w io.Writer, c CacheView) {
	tbl := newTable(w, "Field", "Value")
	tbl.AddRow("backend", c.Backend)
	switch settings.CacheKind(c.Backend) {
	case settings.CacheMemcached:
		for _, addr := range sortedKeys(c.Servers) {
			tbl.AddRow("server "+addr, c.Servers[addr])
		}
		for _, bin := range sortedKeys(c.Bins) {
			tbl.AddRow("bin "+bin, c.Bins[bin])
		}
		tbl.AddRow("key prefix", orDash(c.KeyPrefix))
	case settings.CacheAPC:
		tbl.AddRow("prefix", orDash(c.Prefix))
		tbl.AddRow("shared", formatBool(*c.Shared))
		tbl.AddRow("static", formatBool(*c.Static))
		tbl.AddRow("fast cache", formatBool(*c.FastCache))
	}
	tbl.Print()
	fmt.Fprintln(w)
}

// RenderVarsTerminal prints a vhost variable map.
func RenderVarsTerminal(w io.Writer, path string, vars vhost.EnvMap) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n\n", bold("Vhost variables"), cyan(path))
	if len(vars) == 0 {
		fmt.Fprintf(w, "  %s\n\n", yellow("no SetEnv directives found"))
		return
	}
	tbl := newTable(w, "Name", "Value")
	for _, k := range vars.Keys() {
		tbl.AddRow(k, vars[k])
	}
	tbl.Print()
	fmt.Fprintln(w)
}

// RenderInventoryTerminal prints one row per environment.
func RenderInventoryTerminal(w io.Writer, r inventory.Report) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s in %s\n\n", bold("Environments for"), cyan(r.Project), r.VhostDir)

	tbl := newTable(w, "Environment", "File", "Status", "Vars", "Database")
	for _, s := range r.Environments {
		tbl.AddRow(
			string(s.Environment),
			s.Path,
			formatFileStatus(s),
			len(s.Vars),
			formatDBStatus(s),
		)
	}
	tbl.Print()
	fmt.Fprintln(w)

	if configured := r.Configured(); len(configured) > 0 {
		names := make([]string, len(configured))
		for i, e := range configured {
			names[i] = string(e)
		}
		fmt.Fprintf(w, "%s %s\n\n", green("Database configured for:"), strings.Join(names, ", "))
	} else {
		fmt.Fprintf(w, "%s\n\n", red("No environment has complete database credentials."))
	}
}

func formatFileStatus(s inventory.EnvironmentStatus) string {
	switch {
	case s.Err != nil:
		return red("UNREADABLE")
	case s.Exists:
		return green("PRESENT")
	default:
		return yellow("MISSING")
	}
}

func formatDBStatus(s inventory.EnvironmentStatus) string {
	if s.DBComplete {
		return green("complete")
	}
	if !s.Exists {
		return "-"
	}
	return yellow("incomplete")
}

func formatBool(b bool) string {
	if b {
		return green("yes")
	}
	return yellow("no")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func hostPort(host, port string) string {
	if port == "" {
		return host
	}
	return host + ":" + port
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isSecretKey(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "password") || strings.Contains(n, "secret")
}

// DisableColors turns off color output (for non-TTY or machine formats)
func DisableColors() {
	color.NoColor = true
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

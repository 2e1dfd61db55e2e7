package settings

import (
	"go.uber.org/zap"

	"github.com/dmagro/sitesettings/internal/env"
	"github.com/dmagro/sitesettings/internal/selector"
	"github.com/dmagro/sitesettings/internal/vhost"
)

// Request describes one load.
type Request struct {
	// Root is the drupal root used to infer the environment.
	Root string
	// Environment, when set, bypasses root matching.
	Environment selector.Environment
	// Vars is the captured process environment (see env.Snapshot).
	Vars vhost.EnvMap
}

// Loader runs file discovery and assembly.
type Loader struct {
	Selector *selector.Selector
	Defaults Defaults
	Logger   *zap.Logger
}

// NewLoader returns a Loader. A nil logger discards output.
func NewLoader(sel *selector.Selector, d Defaults, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Selector: sel, Defaults: d, Logger: logger}
}

// Load returns the settings record for req. It never fails: a missing or
// unreadable vhost file, an unmatched root or incomplete credentials all
// produce a record with the affected fields left unset.
func (l *Loader) Load(req Request) Record {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}

	vars, sel, source := l.discover(req, log)

	rec := Assemble(vars, l.Defaults)
	rec.Environment = sel.Environment
	rec.Source = source

	if rec.Database == nil {
		var missing []string
		for _, k := range env.DatabaseKeys {
			if _, ok := vars[k]; !ok {
				missing = append(missing, k)
			}
		}
		log.Debug("database settings left unset", zap.Strings("missing", missing))
	}
	return rec
}

// discover returns the variables to assemble from. When the process
// environment already names a database the vhost files are not consulted.
func (l *Loader) discover(req Request, log *zap.Logger) (vhost.EnvMap, selector.Selection, string) {
	base := req.Vars.Clone()

	if _, ok := base[env.DBName]; ok {
		log.Debug("using database settings from environment")
		return base, selector.Selection{}, SourceEnvironment
	}

	if l.Selector == nil {
		return base, selector.Selection{}, ""
	}

	root := req.Root
	if root == "" {
		root = base[env.PWD]
	}

	sel, ok := l.Selector.Select(root, req.Environment)
	if !ok {
		log.Debug("no vhost file selected",
			zap.String("project", l.Selector.Project),
			zap.String("vhost_dir", l.Selector.VhostDir),
			zap.String("root", root))
		return base, selector.Selection{}, ""
	}

	if !l.Selector.Exists(sel.Environment) {
		log.Debug("selected vhost file does not exist",
			zap.String("environment", string(sel.Environment)),
			zap.String("path", sel.Path))
		return base, sel, ""
	}

	fileVars, err := vhost.ReadFile(sel.Path)
	if err != nil {
		log.Warn("ignoring unreadable vhost file", zap.String("path", sel.Path), zap.Error(err))
	}
	if len(fileVars) == 0 {
		log.Debug("vhost file contributed no variables", zap.String("path", sel.Path))
	}
	log.Debug("loaded vhost file",
		zap.String("environment", string(sel.Environment)),
		zap.String("path", sel.Path),
		zap.Int("vars", len(fileVars)))

	return base.Overlay(fileVars), sel, sel.Path
}

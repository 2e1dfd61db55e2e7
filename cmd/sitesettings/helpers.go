package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dmagro/sitesettings/internal/config"
	"github.com/dmagro/sitesettings/internal/env"
	"github.com/dmagro/sitesettings/internal/logging"
	"github.com/dmagro/sitesettings/internal/output"
	"github.com/dmagro/sitesettings/internal/selector"
	"github.com/dmagro/sitesettings/internal/vhost"
)

var errProjectRequired = errors.New("--project is required (or set project in the config file)")

// app bundles what every subcommand needs after flag parsing.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func setup(opts *globalOptions) (*app, error) {
	// Config warnings are logged at the level the config itself asks for,
	// so load once with a bootstrap logger first.
	bootstrap, err := logging.New(levelOr(opts.logLevel, "warn"), logging.FormatConsole, os.Stderr)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadOrDefault(opts.configPath, bootstrap)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(levelOr(opts.logLevel, cfg.Logging.Level), cfg.Logging.Format, os.Stderr)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func levelOr(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

// snapshot captures the consumed environment variables, letting the .env
// file win over the process environment.
func snapshot(opts *globalOptions, logger *zap.Logger) vhost.EnvMap {
	dotenv, err := env.LoadDotEnv(opts.envFile)
	if err != nil {
		logger.Warn("ignoring env file", zap.String("path", opts.envFile), zap.Error(err))
		dotenv = map[string]string{}
	}
	return env.Snapshot(env.Merge(env.FromMap(dotenv), os.LookupEnv))
}

// newSelector builds a selector from flags, falling back to config values.
func (a *app) newSelector(project, vhostDir string) *selector.Selector {
	if project == "" {
		project = a.cfg.Project
	}
	if vhostDir == "" {
		vhostDir = a.cfg.ResolvedVhostDir()
	}
	return selector.New(vhostDir, project)
}

func prepareFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			if format != "terminal" || !output.IsTerminal() {
				output.DisableColors()
			}
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (expected one of %v)", format, allowed)
}

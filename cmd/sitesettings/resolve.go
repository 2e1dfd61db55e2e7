package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmagro/sitesettings/internal/env"
	"github.com/dmagro/sitesettings/internal/output"
	"github.com/dmagro/sitesettings/internal/selector"
	"github.com/dmagro/sitesettings/internal/settings"
	"github.com/dmagro/sitesettings/internal/vhost"
)

type resolveOptions struct {
	project     string
	root        string
	environment string
	vhostDir    string
	format      string
	drupal      int
	showSecrets bool
	noEnv       bool
}

func resolveCmd(g *globalOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Assemble the settings record for a site",
		Long: `Resolve the settings for one site.

If db_name is already set in the environment (or .env file) the vhost files are
not read. Otherwise the drupal root (--root/-r, then $PWD) selects the live,
dev or test vhost file of the project, unless --env names it directly.

Examples:
  sitesettings resolve --project myproj --root /var/www/myproj/live/docroot
  sitesettings resolve --project myproj --env test --format json
  sitesettings resolve --format php --drupal 7 > sites/default/pantheon.settings.php`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.OutOrStdout(), g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.project, "project", "", "Project name (overrides config)")
	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "Drupal root used to infer the environment (default $PWD)")
	cmd.Flags().StringVar(&opts.environment, "env", "", "Environment: live|dev|test (skips root matching)")
	cmd.Flags().StringVar(&opts.vhostDir, "vhost-dir", "", "Vhost directory (overrides config)")
	cmd.Flags().StringVar(&opts.format, "format", "terminal", "Output format: terminal|json|yaml|php")
	cmd.Flags().IntVar(&opts.drupal, "drupal", 0, "Drupal major version for php output (default from config)")
	cmd.Flags().BoolVar(&opts.showSecrets, "show-secrets", false, "Show passwords in terminal/json/yaml output")
	cmd.Flags().BoolVar(&opts.noEnv, "no-env", false, "Ignore process environment and .env file")

	return cmd
}

func runResolve(w io.Writer, g *globalOptions, opts *resolveOptions) error {
	if err := prepareFormat(opts.format, "terminal", "json", "yaml", "php"); err != nil {
		return err
	}
	environment, err := selector.ParseEnvironment(opts.environment)
	if err != nil {
		return err
	}

	a, err := setup(g)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	vars := vhost.EnvMap{}
	if !opts.noEnv {
		vars = snapshot(g, a.logger)
	}

	pwd := vars[env.PWD]
	if pwd == "" {
		pwd, _ = os.Getwd()
	}

	loader := settings.NewLoader(
		a.newSelector(opts.project, opts.vhostDir),
		a.cfg.SettingsDefaults(),
		a.logger,
	)
	rec := loader.Load(settings.Request{
		Root:        selector.ResolveRoot(opts.root, pwd),
		Environment: environment,
		Vars:        vars,
	})

	switch opts.format {
	case "json":
		return output.RenderJSON(w, output.NewRecordView(rec, opts.showSecrets))
	case "yaml":
		return output.RenderYAML(w, output.NewRecordView(rec, opts.showSecrets))
	case "php":
		version := opts.drupal
		if version == 0 {
			version = a.cfg.DrupalVersion
		}
		return output.RenderPHP(w, rec, version)
	default:
		output.RenderRecordTerminal(w, rec, opts.showSecrets)
		return nil
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmagro/sitesettings/internal/output"
	"github.com/dmagro/sitesettings/internal/selector"
	"github.com/dmagro/sitesettings/internal/vhost"
)

type varsOptions struct {
	project     string
	environment string
	vhostDir    string
	format      string
	showSecrets bool
}

func varsCmd(g *globalOptions) *cobra.Command {
	opts := &varsOptions{}

	cmd := &cobra.Command{
		Use:   "vars [vhost-file]",
		Short: "Print the SetEnv variables of a vhost file",
		Long: `Print the variables defined by SetEnv directives in a vhost file, either given
as a path or located from --project and --env.

Examples:
  sitesettings vars /etc/apache2/sites-available/000_myproj_live
  sitesettings vars --project myproj --env dev --format json
  sitesettings vars --project myproj --env live --format vhost`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runVars(cmd.OutOrStdout(), g, opts, path)
		},
	}

	cmd.Flags().StringVar(&opts.project, "project", "", "Project name (overrides config)")
	cmd.Flags().StringVar(&opts.environment, "env", "live", "Environment: live|dev|test")
	cmd.Flags().StringVar(&opts.vhostDir, "vhost-dir", "", "Vhost directory (overrides config)")
	cmd.Flags().StringVar(&opts.format, "format", "terminal", "Output format: terminal|json|vhost")
	cmd.Flags().BoolVar(&opts.showSecrets, "show-secrets", false, "Show password values")

	return cmd
}

func runVars(w io.Writer, g *globalOptions, opts *varsOptions, path string) error {
	if err := prepareFormat(opts.format, "terminal", "json", "vhost"); err != nil {
		return err
	}

	a, err := setup(g)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if path == "" {
		environment, err := selector.ParseEnvironment(opts.environment)
		if err != nil {
			return err
		}
		if environment == "" {
			environment = selector.Live
		}
		sel := a.newSelector(opts.project, opts.vhostDir)
		if sel.Project == "" {
			return fmt.Errorf("a vhost file argument or %w", errProjectRequired)
		}
		path = sel.Path(environment)
	}

	vars, err := vhost.ReadFile(path)
	if err != nil {
		return err
	}
	if len(vars) == 0 {
		a.logger.Debug("no variables found", zap.String("path", path))
	}

	// vhost format is meant to be written back to disk, never mask it.
	if opts.format == "vhost" {
		_, err := io.WriteString(w, vhost.Format(vars))
		return err
	}

	shown := vars
	if !opts.showSecrets {
		shown = output.MaskVars(vars)
	}
	if opts.format == "json" {
		return output.RenderJSON(w, shown)
	}
	output.RenderVarsTerminal(w, path, shown)
	return nil
}

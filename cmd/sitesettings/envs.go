package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmagro/sitesettings/internal/inventory"
	"github.com/dmagro/sitesettings/internal/output"
)

func envsCmd(g *globalOptions) *cobra.Command {
	var (
		project  string
		vhostDir string
		format   string
		timeout  time.Duration
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "envs",
		Short: "Show which environments of a project have vhost settings",
		Long: `Inspect the live, dev and test vhost files of a project and report whether
each exists and carries complete database credentials.

Examples:
  sitesettings envs --project myproj
  sitesettings envs --project myproj --format json
  sitesettings envs --project myproj --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				if format != "terminal" {
					return fmt.Errorf("--watch only supports the terminal format, got %q", format)
				}
				return runEnvsWatch(cmd.OutOrStdout(), g, project, vhostDir)
			}
			return runEnvs(cmd.Context(), cmd.OutOrStdout(), g, project, vhostDir, format, timeout)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name (overrides config)")
	cmd.Flags().StringVar(&vhostDir, "vhost-dir", "", "Vhost directory (overrides config)")
	cmd.Flags().StringVar(&format, "format", "terminal", "Output format: terminal|json|yaml")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Time limit for reading the vhost files (not used with --watch)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and redraw whenever a vhost file changes (terminal format only)")

	return cmd
}

func runEnvs(ctx context.Context, w io.Writer, g *globalOptions, project, vhostDir, format string, timeout time.Duration) error {
	if err := prepareFormat(format, "terminal", "json", "yaml"); err != nil {
		return err
	}

	a, err := setup(g)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	sel := a.newSelector(project, vhostDir)
	if sel.Project == "" {
		return errProjectRequired
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report, err := inventory.Inspect(ctx, sel)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return output.RenderJSON(w, output.NewInventoryView(report))
	case "yaml":
		return output.RenderYAML(w, output.NewInventoryView(report))
	default:
		output.RenderInventoryTerminal(w, report)
		return nil
	}
}

func runEnvsWatch(w io.Writer, g *globalOptions, project, vhostDir string) error {
	if err := prepareFormat("terminal", "terminal"); err != nil {
		return err
	}

	a, err := setup(g)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	sel := a.newSelector(project, vhostDir)
	if sel.Project == "" {
		return errProjectRequired
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = inventory.Watch(ctx, sel, inventory.DefaultDebounce, a.logger, func(r inventory.Report) {
		if output.IsTerminal() {
			fmt.Fprint(w, "\033[2J\033[H") // clear screen, cursor home
		}
		fmt.Fprintf(w, "Watching %s (Ctrl+C to exit)...\n", sel.VhostDir)
		output.RenderInventoryTerminal(w, r)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nExiting...")
	return nil
}

// Command sitesettings discovers a Drupal site's per-environment settings
// from its Apache vhost files and renders them for the framework.
//
// Usage examples:
//
//	sitesettings resolve --project myproj --root /var/www/myproj/live/docroot
//	sitesettings resolve --project myproj --env dev --format php --drupal 7
//	sitesettings vars /etc/apache2/sites-available/000_myproj_live
//	sitesettings envs --project myproj
//	sitesettings render --builtin drupal6.settings.php --set project=myproj --set vhost_root=/etc/apache2/sites-available/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	envFile    string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "sitesettings",
		Short: "Resolve Drupal site settings from Apache vhost SetEnv directives",
		Long: `sitesettings reads the SetEnv directives that provisioning writes into each
project's vhost files (000_<project>_live, <project>_dev, <project>_test) and
assembles the database, cache, reverse proxy and Solr settings for a site.

Missing files, unmatched roots and incomplete credentials never fail a run:
the affected settings are simply left unset.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config/sitesettings.yaml", "Config file path (optional)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional .env file consulted before the process environment")

	cmd.AddCommand(
		resolveCmd(opts),
		varsCmd(opts),
		envsCmd(opts),
		renderCmd(opts),
	)
	return cmd
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

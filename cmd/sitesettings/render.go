package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dmagro/sitesettings/internal/template"
)

type renderOptions struct {
	builtin    string
	valuesFile string
	set        []string
	outPath    string
	strict     bool
	list       bool
}

func renderCmd(g *globalOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [template-file]",
		Short: "Substitute ${token} placeholders in a provisioning template",
		Long: `Render a settings or vhost template. Placeholders without a value are left
as they are, so PHP variables pass through untouched.

Examples:
  sitesettings render --list
  sitesettings render --builtin drupal6.settings.php --set project=myproj --set vhost_root=/etc/apache2/sites-available/
  sitesettings render vhost.template --values values.yaml -o /etc/apache2/sites-available/myproj_dev`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runRender(cmd.OutOrStdout(), g, opts, path)
		},
	}

	cmd.Flags().StringVar(&opts.builtin, "builtin", "", "Use an embedded template instead of a file")
	cmd.Flags().StringVar(&opts.valuesFile, "values", "", "YAML file of token values")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "Token value as key=value (repeatable, wins over --values)")
	cmd.Flags().StringVarP(&opts.outPath, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when a ${token} has no value")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List embedded templates and exit")

	return cmd
}

func runRender(w io.Writer, g *globalOptions, opts *renderOptions, path string) error {
	if opts.list {
		for _, name := range template.Builtins() {
			fmt.Fprintln(w, name)
		}
		return nil
	}

	a, err := setup(g)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	text, err := readTemplate(opts.builtin, path)
	if err != nil {
		return err
	}

	values, err := renderValues(opts.valuesFile, opts.set)
	if err != nil {
		return err
	}

	if missing := template.Missing(text, values); len(missing) > 0 {
		if opts.strict {
			return fmt.Errorf("template has tokens without values: %s", strings.Join(missing, ", "))
		}
		a.logger.Warn("leaving tokens without values untouched", zap.Strings("tokens", missing))
	}

	rendered := template.Render(text, values)
	if opts.outPath == "" {
		_, err := io.WriteString(w, rendered)
		return err
	}
	if err := os.WriteFile(opts.outPath, []byte(rendered), 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.outPath, err)
	}
	a.logger.Info("rendered template", zap.String("output", opts.outPath))
	return nil
}

func readTemplate(builtin, path string) (string, error) {
	switch {
	case builtin != "" && path != "":
		return "", fmt.Errorf("give either a template file or --builtin, not both")
	case builtin != "":
		return template.Builtin(builtin)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read template: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("a template file or --builtin is required")
	}
}

// renderValues merges the --values file with --set pairs, --set winning.
func renderValues(valuesFile string, pairs []string) (map[string]string, error) {
	values := make(map[string]string)
	if valuesFile != "" {
		data, err := os.ReadFile(valuesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read values: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse values: %w", err)
		}
	}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q (expected key=value)", p)
		}
		values[k] = v
	}
	return values, nil
}

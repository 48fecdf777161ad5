package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective configuration: file values merged with
BINLAYOUT_ environment overrides and defaults.

By default outputs YAML format. Use --output json for JSON.

Examples:
  binlayout config show
  binlayout config show --output json --config /etc/binlayout/config.yaml`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.MustLoad(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(cmdutil.Flags.Output)
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}

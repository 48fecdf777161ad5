package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the binlayout configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  binlayout config validate
  binlayout config validate --config /etc/binlayout/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	configPath := cmdutil.Flags.ConfigFile
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Registry.Type == "memory" {
		warnings = append(warnings, "memory registry: layouts are lost when the process exits")
	}
	if cfg.Server.Auth.JWTSecret == "" {
		warnings = append(warnings, "JWT secret not configured - the API accepts unauthenticated requests")
	}
	if cfg.Codec.MaxInputSize == 0 {
		warnings = append(warnings, "codec.max_input_size is 0 - decode inputs are not limited")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Registry type:   %s\n", cfg.Registry.Type)
	_, _ = fmt.Fprintf(out, "  Endianness:      %s\n", cfg.Codec.Endianness)
	_, _ = fmt.Fprintf(out, "  API port:        %d\n", cfg.Server.Port)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}

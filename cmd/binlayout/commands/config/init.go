package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the defaults",
	Long: `Write the default configuration to --config, or to
$XDG_CONFIG_HOME/binlayout/config.yaml when --config is not given.

Examples:
  binlayout config init
  binlayout config init --config ./binlayout.yaml --force`,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := cmdutil.Flags.ConfigFile
	var err error
	if path != "" {
		err = config.InitConfigToPath(path, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the configuration file to customize your setup")
	_, _ = fmt.Fprintln(out, "  2. Start the service with: binlayout serve")
	return nil
}

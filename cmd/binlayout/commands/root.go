// Package commands implements the binlayout command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/cmd/binlayout/commands/config"
	ctxcmd "github.com/marmos91/binlayout/cmd/binlayout/commands/context"
	"github.com/marmos91/binlayout/cmd/binlayout/commands/registry"
	"github.com/marmos91/binlayout/cmd/binlayout/commands/schema"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "binlayout",
	Short: "binlayout - schema-driven binary codec",
	Long: `binlayout converts between structured values and packed binary records
described by a layout descriptor. Layouts are YAML or JSON documents, either
passed as files or stored by name in the layout registry, locally or on a
binlayout service selected with "binlayout login" or --server.

Use "binlayout [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cmdutil.Flags.ConfigFile, "config", "", "config file (default: $XDG_CONFIG_HOME/binlayout/config.yaml)")
	flags.StringVar(&cmdutil.Flags.LogLevel, "log-level", "", "override the configured log level (debug|info|warn|error)")
	flags.StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "output format (table|json|yaml)")
	flags.BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "disable colored output")
	flags.StringVar(&cmdutil.Flags.Server, "server", "", "binlayout service URL (default: the current login context)")
	flags.StringVar(&cmdutil.Flags.Token, "token", "", "bearer token for the service")
	flags.BoolVar(&cmdutil.Flags.Local, "local", false, "ignore the current login context and use the local registry")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(reframeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ctxcmd.Cmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(registry.Cmd)
	rootCmd.AddCommand(schema.Cmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func preRun(cmd *cobra.Command, _ []string) error {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[cmdutil.SkipConfig]; ok {
			return nil
		}
	}

	cfg, err := cmdutil.Config()
	if err != nil {
		return err
	}
	return cmdutil.InitLogger(cfg)
}

// Package context implements context management subcommands for binlayout.
package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/credentials"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Manage server contexts",
	Long: `Manage the binlayout services saved by "binlayout login".

Contexts allow you to save and switch between different services, similar
to kubectl contexts.

Subcommands:
  list     List all saved contexts
  use      Switch to a different context
  current  Show the current context
  delete   Delete a context`,
	Annotations: cmdutil.NoConfig(),
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(deleteCmd)
}

func openStore() (*credentials.Store, error) {
	store, err := credentials.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	return store, nil
}

// Package registry implements layout registry subcommands.
package registry

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/pkg/registry"
)

// Cmd is the registry subcommand.
var Cmd = &cobra.Command{
	Use:     "registry",
	Aliases: []string{"reg"},
	Short:   "Manage registered layouts",
	Long: `Manage the named layouts in the configured registry, or on the
binlayout service of the current login context.

Local layouts only persist between invocations with a badger registry
(registry.type: badger).`,
}

func init() {
	Cmd.AddCommand(putCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(loadCmd)
}

// withStore opens the registry for the duration of fn.
func withStore(ctx context.Context, fn func(registry.Store) error) error {
	cfg, err := cmdutil.Config()
	if err != nil {
		return err
	}
	s, err := cmdutil.OpenRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		_ = s.Close()
		return err
	}
	return s.Close()
}

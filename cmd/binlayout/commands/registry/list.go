package registry

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/pkg/registry"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered layouts",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	var ls []*registry.Layout
	err := withStore(cmd.Context(), func(s registry.Store) error {
		var err error
		ls, err = s.List(cmd.Context())
		return err
	})
	if err != nil {
		return err
	}

	list, err := output.NewLayoutList(ls)
	if err != nil {
		return err
	}
	return cmdutil.PrintOutput(cmd.OutOrStdout(), list, len(list) == 0, "No layouts registered.", list)
}

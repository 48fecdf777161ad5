package registry

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/pkg/registry"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a registered layout",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withStore(cmd.Context(), func(s registry.Store) error {
		return cmdutil.RunDeleteWithConfirmation(cmd.OutOrStdout(), "layout", name, deleteForce, func() error {
			return s.Delete(cmd.Context(), name)
		})
	})
}

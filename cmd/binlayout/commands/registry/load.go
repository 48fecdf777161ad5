package registry

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/pkg/registry"
)

var loadCmd = &cobra.Command{
	Use:   "load <dir>",
	Short: "Register every descriptor file in a directory",
	Long: `Register every .yaml, .yml and .json file in dir under its base name.
Files that fail to parse are reported and skipped.

Examples:
  binlayout registry load ./layouts`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	var n int
	err := withStore(cmd.Context(), func(s registry.Store) error {
		var err error
		n, err = registry.LoadDir(cmd.Context(), s, args[0])
		return err
	})
	if err != nil {
		return err
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	p.Success(fmt.Sprintf("%d layouts loaded from %s", n, args[0]))
	return nil
}

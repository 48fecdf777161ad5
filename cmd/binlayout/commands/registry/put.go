package registry

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/schema"
)

var putDescription string

var putCmd = &cobra.Command{
	Use:   "put <name> <file>",
	Short: "Register or replace a layout",
	Long: `Register the descriptor in file under name. An existing layout with the
same name is replaced and keeps its ID and creation time.

Examples:
  binlayout registry put header header.yaml --description "v2 file header"`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringVar(&putDescription, "description", "", "layout description")
}

func runPut(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]
	if err := registry.ValidateName(name); err != nil {
		return err
	}
	d, err := schema.Load(path)
	if err != nil {
		return err
	}

	l := &registry.Layout{Name: name, Description: putDescription, Descriptor: d}
	err = withStore(cmd.Context(), func(s registry.Store) error {
		return s.Put(cmd.Context(), l)
	})
	if err != nil {
		return err
	}

	detail, err := output.NewLayoutDetail(l)
	if err != nil {
		return err
	}
	return cmdutil.PrintResourceWithSuccess(cmd.OutOrStdout(), detail,
		fmt.Sprintf("Layout '%s' registered (fingerprint %s)", name, detail.Fingerprint))
}

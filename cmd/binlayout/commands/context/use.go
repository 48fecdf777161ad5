package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
)

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Use(args[0]); err != nil {
			return err
		}
		p, err := cmdutil.Printer(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		p.Success(fmt.Sprintf("Switched to context %s", args[0]))
		return nil
	},
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		ctx, err := store.Current()
		if err != nil {
			return err
		}
		info := newContextInfo(store, store.CurrentName(), ctx)

		p, err := cmdutil.Printer(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if p.Format() == output.FormatTable {
			p.Printf("%s (%s)\n", info.Name, info.ServerURL)
			return nil
		}
		return p.Print(info)
	},
}

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a context",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if _, err := store.Get(args[0]); err != nil {
			return err
		}
		return cmdutil.RunDeleteWithConfirmation(cmd.OutOrStdout(), "context", args[0], deleteForce, func() error {
			return store.Delete(args[0])
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

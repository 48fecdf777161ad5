package registry

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/internal/cli/prompt"
	"github.com/marmos91/binlayout/pkg/registry"
)

var getCmd = &cobra.Command{
	Use:   "get [name]",
	Short: "Show a registered layout",
	Long: `Show a registered layout. Without a name an interactive picker lists the
registered layouts.

JSON and YAML output include the schema document, so

  binlayout registry get header -o yaml

round-trips through "registry put" after removing the metadata keys.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var l *registry.Layout

	err := withStore(ctx, func(s registry.Store) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			var err error
			if name, err = pickLayout(cmd, s); err != nil {
				return err
			}
		}

		var err error
		l, err = s.Get(ctx, name)
		return err
	})
	if err != nil {
		if prompt.IsAborted(err) {
			return nil
		}
		return err
	}

	detail, err := output.NewLayoutDetail(l)
	if err != nil {
		return err
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, detail)
	case output.FormatYAML:
		return output.PrintYAML(w, detail)
	}

	if err := output.SimpleTable(w, detail.Pairs()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)
	return output.PrintTable(w, output.NewFieldList(l.Descriptor))
}

func pickLayout(cmd *cobra.Command, s registry.Store) (string, error) {
	ls, err := s.List(cmd.Context())
	if err != nil {
		return "", err
	}
	if len(ls) == 0 {
		return "", errors.New("no layouts registered")
	}

	options := make([]prompt.SelectOption, len(ls))
	for i, l := range ls {
		options[i] = prompt.SelectOption{Label: l.Name, Value: l.Name, Description: l.Description}
	}
	return prompt.Select("Layout", options)
}

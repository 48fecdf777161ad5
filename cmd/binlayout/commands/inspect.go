package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/schema"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|name>",
	Short: "Show the field map of a layout",
	Long: `Show a layout's type, size and fingerprint followed by every field with
its wire offset and size. Offsets after unterminated text depend on the data
and are shown as "dyn".

Examples:
  binlayout inspect header.yaml
  binlayout inspect packet -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

// inspectResult is the machine-readable output of inspect.
type inspectResult struct {
	Name        string           `json:"name" yaml:"name"`
	Type        string           `json:"type" yaml:"type"`
	Size        int              `json:"size" yaml:"size"`
	Dynamic     bool             `json:"dynamic" yaml:"dynamic"`
	Fingerprint string           `json:"fingerprint" yaml:"fingerprint"`
	Fields      output.FieldList `json:"fields" yaml:"fields"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.Config()
	if err != nil {
		return err
	}
	name, d, err := cmdutil.ResolveLayout(cmd.Context(), cfg, args[0])
	if err != nil {
		return err
	}
	fp, err := schema.Fingerprint(d)
	if err != nil {
		return err
	}

	res := inspectResult{
		Name:        name,
		Type:        layout.TypeName(d),
		Size:        layout.Size(d),
		Dynamic:     layout.HasUnterminatedText(d),
		Fingerprint: fp,
		Fields:      output.NewFieldList(d),
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, res)
	case output.FormatYAML:
		return output.PrintYAML(w, res)
	}

	size := strconv.Itoa(res.Size)
	if res.Dynamic {
		size = ">=" + size
	}
	if err := output.SimpleTable(w, [][2]string{
		{"Name", res.Name},
		{"Type", res.Type},
		{"Size", size},
		{"Fingerprint", res.Fingerprint},
	}); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)
	return output.PrintTable(w, res.Fields)
}

// Package schema implements descriptor document subcommands.
package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/schema"
)

// Cmd is the schema subcommand.
var Cmd = &cobra.Command{
	Use:   "schema",
	Short: "Work with layout descriptor documents",
}

func init() {
	Cmd.AddCommand(jsonSchemaCmd)
	Cmd.AddCommand(convertCmd)
	Cmd.AddCommand(fingerprintCmd)
}

var jsonSchemaCmd = &cobra.Command{
	Use:   "jsonschema",
	Short: "Print the JSON schema of descriptor documents",
	Long: `Print the JSON schema descriptor documents are validated against, for
editor completion of layout files.`,
	Args:        cobra.NoArgs,
	Annotations: cmdutil.NoConfig(),
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := schema.JSONSchema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

var (
	convertTo       string
	convertEncoding string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file|name>",
	Short: "Convert a descriptor between YAML, JSON and CBOR",
	Long: `Convert a descriptor document. Files ending in .cbor are read as the
binary form; everything else is parsed as YAML or JSON. Registered layout
names are accepted too.

Examples:
  binlayout schema convert header.yaml --to json
  binlayout schema convert header.yaml --to cbor --encoding raw > header.cbor
  binlayout schema convert header.cbor --to yaml`,
	Args:        cobra.ExactArgs(1),
	Annotations: cmdutil.NoConfig(),
	RunE:        runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertTo, "to", "yaml", "target format (yaml|json|cbor)")
	convertCmd.Flags().StringVar(&convertEncoding, "encoding", "hex", "output encoding for cbor (raw|hex|base64|dump)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if strings.EqualFold(convertTo, "cbor") {
		enc, err := output.ParseEncoding(convertEncoding)
		if err != nil {
			return err
		}
		data, err := schema.MarshalBinary(d)
		if err != nil {
			return err
		}
		return output.WriteBytes(out, data, enc)
	}

	format, err := schema.ParseFormat(convertTo)
	if err != nil {
		return err
	}
	data, err := schema.Marshal(d, format)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <file|name>",
	Short: "Print the fingerprint of a descriptor",
	Long: `Print the BLAKE2b-256 fingerprint of a descriptor's canonical binary
form. Descriptors that differ only in document formatting share a
fingerprint.`,
	Args:        cobra.ExactArgs(1),
	Annotations: cmdutil.NoConfig(),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDescriptor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fp, err := schema.Fingerprint(d)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), fp)
		return err
	},
}

// loadDescriptor reads a .cbor file directly and resolves anything else
// through the file-or-registry lookup. The configuration is only loaded for
// registry lookups.
func loadDescriptor(ctx context.Context, ref string) (layout.Descriptor, error) {
	if strings.EqualFold(filepath.Ext(ref), ".cbor") {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read descriptor: %w", err)
		}
		return schema.UnmarshalBinary(data)
	}

	if st, err := os.Stat(ref); err == nil && !st.IsDir() {
		return schema.Load(ref)
	}

	cfg, err := cmdutil.Config()
	if err != nil {
		return nil, err
	}
	if err := cmdutil.InitLogger(cfg); err != nil {
		return nil, err
	}
	_, d, err := cmdutil.ResolveLayout(ctx, cfg, ref)
	return d, err
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/layout"
)

// codecFlags are shared by the commands that build a codec.
type codecFlags struct {
	layout     string
	endian     string
	terminated bool
}

func (f *codecFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.layout, "layout", "l", "", "layout descriptor file or registered layout name")
	cmd.Flags().StringVar(&f.endian, "endian", "", "byte order override (little|big)")
	cmd.Flags().BoolVar(&f.terminated, "terminated", false, "write NUL terminators after unterminated text fields")
	_ = cmd.MarkFlagRequired("layout")
}

// build resolves the layout and returns a codec for it.
func (f *codecFlags) build(ctx context.Context) (*codec.Codec, error) {
	cfg, err := cmdutil.Config()
	if err != nil {
		return nil, err
	}
	name, d, err := cmdutil.ResolveLayout(ctx, cfg, f.layout)
	if err != nil {
		return nil, err
	}
	opts, err := cmdutil.CodecOptions(cfg, name, f.endian, f.terminated)
	if err != nil {
		return nil, err
	}
	return codec.New(d, opts...), nil
}

var (
	encodeFlags    codecFlags
	encodeValue    string
	encodeEncoding string
	encodeOut      string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a value into a binary record",
	Long: `Encode a YAML or JSON value into the binary record described by a layout.

The value is read from --value, or from stdin when --value is omitted or "-".

Examples:
  # Encode a value file and print it as hex
  binlayout encode -l header.yaml --value header-value.yaml

  # Encode from stdin into a raw file
  echo '{magic: 1234, version: 2}' | binlayout encode -l header --encoding raw --out header.bin`,
	RunE: runEncode,
}

func init() {
	encodeFlags.register(encodeCmd)
	encodeCmd.Flags().StringVar(&encodeValue, "value", "-", "value document (YAML or JSON), - for stdin")
	encodeCmd.Flags().StringVar(&encodeEncoding, "encoding", "hex", "output encoding (raw|hex|base64|dump)")
	encodeCmd.Flags().StringVar(&encodeOut, "out", "-", "output file, - for stdout")
}

func runEncode(cmd *cobra.Command, _ []string) error {
	enc, err := output.ParseEncoding(encodeEncoding)
	if err != nil {
		return err
	}
	c, err := encodeFlags.build(cmd.Context())
	if err != nil {
		return err
	}

	data, err := cmdutil.ReadInput(encodeValue, cmd.InOrStdin())
	if err != nil {
		return err
	}
	v, err := cmdutil.ParseValue(data)
	if err != nil {
		return err
	}

	start := time.Now()
	buf, err := c.Encode(v)
	if err != nil {
		return err
	}
	logger.Debug("Encoded value", logger.Layout(c.Name()), logger.Bytes(len(buf)),
		logger.DurationMs(logger.Duration(start)))

	w, closeFn, err := cmdutil.OutputWriter(encodeOut, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := output.WriteBytes(w, buf, enc); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

var (
	decodeFlags    codecFlags
	decodeInput    string
	decodeEncoding string
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a binary record into a value",
	Long: `Decode the binary record described by a layout.

Tables list every leaf field in wire order. JSON and YAML print the value
tree, which encode accepts back.

Examples:
  # Decode a raw file
  binlayout decode -l header.yaml --input header.bin

  # Decode hex from stdin as JSON
  echo 'd2040200' | binlayout decode -l header --input-encoding hex -o json`,
	RunE: runDecode,
}

func init() {
	decodeFlags.register(decodeCmd)
	decodeCmd.Flags().StringVar(&decodeInput, "input", "-", "input file, - for stdin")
	decodeCmd.Flags().StringVar(&decodeEncoding, "input-encoding", "raw", "input encoding (raw|hex|base64)")
}

func runDecode(cmd *cobra.Command, _ []string) error {
	enc, err := output.ParseEncoding(decodeEncoding)
	if err != nil {
		return err
	}
	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	c, err := decodeFlags.build(cmd.Context())
	if err != nil {
		return err
	}

	buf, err := readRecord(cmd, decodeInput, enc)
	if err != nil {
		return err
	}

	start := time.Now()
	v, err := c.Decode(buf)
	if err != nil {
		return err
	}
	logger.Debug("Decoded record", logger.Layout(c.Name()), logger.Bytes(len(buf)),
		logger.DurationMs(logger.Duration(start)))

	return p.Print(output.Decoded{Descriptor: c.Descriptor(), Value: v})
}

func readRecord(cmd *cobra.Command, path string, enc output.Encoding) ([]byte, error) {
	data, err := cmdutil.ReadInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return output.DecodeBytes(data, enc)
}

var (
	sizeFlags    codecFlags
	sizeInput    string
	sizeEncoding string
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Report the encoded size of a layout",
	Long: `Report the number of bytes a layout occupies on the wire.

Layouts with unterminated text have no static size; for those the static
figure is a lower bound. Pass --input to measure an actual record.

Examples:
  binlayout size -l header.yaml
  binlayout size -l packet --input packet.bin`,
	RunE: runSize,
}

func init() {
	sizeFlags.register(sizeCmd)
	sizeCmd.Flags().StringVar(&sizeInput, "input", "", "record to measure, - for stdin")
	sizeCmd.Flags().StringVar(&sizeEncoding, "input-encoding", "raw", "input encoding (raw|hex|base64)")
}

// sizeResult is the machine-readable output of size.
type sizeResult struct {
	Layout   string `json:"layout" yaml:"layout"`
	Size     int    `json:"size" yaml:"size"`
	Measured bool   `json:"measured" yaml:"measured"`
	Dynamic  bool   `json:"dynamic" yaml:"dynamic"`
}

func runSize(cmd *cobra.Command, _ []string) error {
	c, err := sizeFlags.build(cmd.Context())
	if err != nil {
		return err
	}

	res := sizeResult{
		Layout:  c.Name(),
		Size:    c.Size(),
		Dynamic: layout.HasUnterminatedText(c.Descriptor()),
	}

	if sizeInput != "" {
		enc, err := output.ParseEncoding(sizeEncoding)
		if err != nil {
			return err
		}
		buf, err := readRecord(cmd, sizeInput, enc)
		if err != nil {
			return err
		}
		if res.Size, err = c.Measure(buf); err != nil {
			return err
		}
		res.Measured = true
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		suffix := ""
		if res.Dynamic && !res.Measured {
			suffix = " (minimum, layout has unterminated text)"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d%s\n", res.Size, suffix)
		return nil
	}
	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return p.Print(res)
}

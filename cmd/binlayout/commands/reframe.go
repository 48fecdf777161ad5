package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/pkg/bitframe"
	"github.com/marmos91/binlayout/pkg/layout"
)

var (
	reframeOffset   int
	reframeBits     int
	reframeIn       string
	reframeOut      string
	reframeInput    string
	reframeInputEnc string
	reframeEncoding string
)

var reframeCmd = &cobra.Command{
	Use:   "reframe [hex]",
	Short: "Extract a run of bits into byte-aligned output",
	Long: `Extract --bits bits starting at bit --offset and pack them, least
significant bit first, into a fresh byte-aligned buffer.

The source is the hex argument, or --input when no argument is given.
--in selects how byte indices map onto the source; --out reverses the
packed result when big.

Examples:
  # 10 bits starting at bit 3
  binlayout reframe --offset 3 --bits 10 aacc

  # Pull a 12-bit field out of a raw file
  binlayout reframe --offset 4 --bits 12 --input frame.bin`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: cmdutil.NoConfig(),
	RunE:        runReframe,
}

func init() {
	reframeCmd.Flags().IntVar(&reframeOffset, "offset", 0, "first bit to extract")
	reframeCmd.Flags().IntVar(&reframeBits, "bits", 0, "number of bits to extract")
	reframeCmd.Flags().StringVar(&reframeIn, "in", "little", "source byte order (little|big)")
	reframeCmd.Flags().StringVar(&reframeOut, "out", "little", "output byte order (little|big)")
	reframeCmd.Flags().StringVar(&reframeInput, "input", "-", "source file when no hex argument is given, - for stdin")
	reframeCmd.Flags().StringVar(&reframeInputEnc, "input-encoding", "raw", "source encoding for --input (raw|hex|base64)")
	reframeCmd.Flags().StringVar(&reframeEncoding, "encoding", "hex", "output encoding (raw|hex|base64|dump)")
	_ = reframeCmd.MarkFlagRequired("bits")
}

func runReframe(cmd *cobra.Command, args []string) error {
	if reframeOffset < 0 {
		return errors.New("--offset must not be negative")
	}
	if reframeBits <= 0 {
		return errors.New("--bits must be positive")
	}
	inOrder, err := layout.ParseEndianness(reframeIn)
	if err != nil {
		return err
	}
	outOrder, err := layout.ParseEndianness(reframeOut)
	if err != nil {
		return err
	}
	enc, err := output.ParseEncoding(reframeEncoding)
	if err != nil {
		return err
	}

	var src []byte
	if len(args) == 1 {
		src, err = output.DecodeBytes([]byte(strings.TrimSpace(args[0])), output.EncodingHex)
	} else {
		var inEnc output.Encoding
		if inEnc, err = output.ParseEncoding(reframeInputEnc); err == nil {
			src, err = readRecord(cmd, reframeInput, inEnc)
		}
	}
	if err != nil {
		return err
	}

	return output.WriteBytes(cmd.OutOrStdout(), bitframe.Reframe(reframeOffset, reframeBits, inOrder, outOrder, src), enc)
}

// Package cmdutil holds helpers shared by the binlayout commands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/internal/cli/prompt"
	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/pkg/apiclient"
	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/config"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/schema"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
	Output     string
	NoColor    bool
	Server     string
	Token      string
	Local      bool
}

// SkipConfig is the annotation key of commands that run without loading a
// configuration.
const SkipConfig = "binlayout/skip-config"

// NoConfig is the annotation set of such commands.
func NoConfig() map[string]string {
	return map[string]string{SkipConfig: ""}
}

var current *config.Config

// Config returns the configuration for this invocation, loading it on first
// use.
func Config() (*config.Config, error) {
	if current != nil {
		return current, nil
	}
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	current = cfg
	return cfg, nil
}

// ResetConfig forgets the loaded configuration.
func ResetConfig() {
	current = nil
}

// LoadConfig loads the configuration named by --config and applies the
// --log-level override.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(Flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if Flags.LogLevel != "" {
		cfg.Logging.Level = strings.ToUpper(Flags.LogLevel)
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// OpenRegistry opens the registry commands work on: the remote service in
// remote mode, otherwise the configured registry without metrics. A memory
// registry is empty on every invocation, which is worth a warning.
func OpenRegistry(ctx context.Context, cfg *config.Config) (registry.Store, error) {
	client, err := RemoteClient()
	if err != nil {
		return nil, err
	}
	if client != nil {
		logger.Debug("Using remote registry", "server", client.BaseURL())
		return apiclient.NewStore(client), nil
	}

	if cfg.Registry.Type == "memory" {
		logger.Warn("Registry type is memory; layouts do not persist between commands",
			"hint", "set registry.type: badger in the configuration")
	}
	return config.OpenRegistry(ctx, cfg, nil)
}

// ResolveLayout loads ref as a descriptor file when one exists at that path
// and otherwise looks it up by name in the registry. It returns the layout
// name used for logging and metrics.
func ResolveLayout(ctx context.Context, cfg *config.Config, ref string) (string, layout.Descriptor, error) {
	if ref == "" {
		return "", nil, errors.New("a layout is required (--layout <file|name>)")
	}

	if st, err := os.Stat(ref); err == nil && !st.IsDir() {
		d, err := schema.Load(ref)
		if err != nil {
			return "", nil, err
		}
		name, ok := registry.NameFromPath(ref)
		if !ok {
			name = d.FieldName()
		}
		return name, d, nil
	}

	s, err := OpenRegistry(ctx, cfg)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = s.Close() }()

	l, err := s.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return "", nil, fmt.Errorf("layout %q is neither a file nor a registered layout", ref)
		}
		return "", nil, err
	}
	return l.Name, l.Descriptor, nil
}

// CodecOptions returns the configured codec options followed by the
// command-line overrides. An empty endian keeps the configured order.
func CodecOptions(cfg *config.Config, name, endian string, terminated bool) ([]codec.Option, error) {
	opts := append(cfg.CodecOptions(), codec.WithName(name))
	if endian != "" {
		e, err := layout.ParseEndianness(endian)
		if err != nil {
			return nil, err
		}
		opts = append(opts, codec.WithEndianness(e))
	}
	if terminated {
		opts = append(opts, codec.WithTerminatedText())
	}
	return opts, nil
}

// ReadInput reads path, or stdin when path is empty or "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// OutputWriter opens path for writing, or returns stdout when path is empty
// or "-". The returned close function is always safe to call.
func OutputWriter(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}

// ParseValue reads a YAML or JSON document into a layout value.
func ParseValue(data []byte) (layout.Value, error) {
	var x any
	if err := yaml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("failed to parse value: %w", err)
	}
	if x == nil {
		return nil, errors.New("empty value document")
	}
	return layout.FromAny(x)
}

// GetOutputFormatParsed returns the parsed --output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// Printer returns a printer for --output on w.
func Printer(w io.Writer) (*output.Printer, error) {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format, !Flags.NoColor && output.ColorSupported(w)), nil
}

// PrintOutput prints data in the --output format. For tables it prints
// emptyMsg instead when isEmpty is set.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintResourceWithSuccess prints data for JSON and YAML, and only a
// success message for tables.
func PrintResourceWithSuccess(w io.Writer, data any, successMsg string) error {
	p, err := Printer(w)
	if err != nil {
		return err
	}
	if p.Format() == output.FormatTable {
		p.Success(successMsg)
		return nil
	}
	return p.Print(data)
}

// RunDeleteWithConfirmation asks before running deleteFn unless force is
// set. An aborted prompt is not an error.
func RunDeleteWithConfirmation(w io.Writer, resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		if prompt.IsAborted(err) {
			_, _ = fmt.Fprintln(w, "\nAborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		_, _ = fmt.Fprintln(w, "Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", resourceType, err)
	}

	p, err := Printer(w)
	if err != nil {
		return err
	}
	p.Success(fmt.Sprintf("%s '%s' deleted", resourceType, name))
	return nil
}

// ParseCommaSeparatedList splits s on commas, trimming blanks.
func ParseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

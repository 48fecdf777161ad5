package cmdutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/config"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
)

const headerDoc = `name: header
type: struct
description:
  - name: magic
    type: int
    bytes: 2
  - name: version
    type: byte
    bytes: 1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// isolateContexts points the login contexts at an empty directory.
func isolateContexts(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func setFlags(t *testing.T, f GlobalFlags) {
	t.Helper()
	prev := *Flags
	*Flags = f
	t.Cleanup(func() { *Flags = prev })
}

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single item", input: "layouts:read", expected: []string{"layouts:read"}},
		{name: "items with spaces", input: "a, b , c", expected: []string{"a", "b", "c"}},
		{name: "empty items filtered out", input: "a,,b,", expected: []string{"a", "b"}},
		{name: "only whitespace filtered out", input: "a, , b", expected: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCommaSeparatedList(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("ParseCommaSeparatedList(%q) = %v, want %v", tt.input, result, tt.expected)
				return
			}
			for i, v := range result {
				if v != tt.expected[i] {
					t.Errorf("ParseCommaSeparatedList(%q)[%d] = %q, want %q", tt.input, i, v, tt.expected[i])
				}
			}
		})
	}
}

func TestReadInput(t *testing.T) {
	data, err := ReadInput("-", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))

	data, err = ReadInput("", strings.NewReader("empty path"))
	require.NoError(t, err)
	assert.Equal(t, "empty path", string(data))

	path := writeFile(t, "in.bin", "\x01\x02")
	data, err = ReadInput(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, data)

	_, err = ReadInput(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestOutputWriter(t *testing.T) {
	var stdout bytes.Buffer
	w, closeFn, err := OutputWriter("-", &stdout)
	require.NoError(t, err)
	_, _ = w.Write([]byte("x"))
	require.NoError(t, closeFn())
	assert.Equal(t, "x", stdout.String())

	path := filepath.Join(t.TempDir(), "out.bin")
	w, closeFn, err = OutputWriter(path, &stdout)
	require.NoError(t, err)
	_, _ = w.Write([]byte{0xff})
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, data)
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue([]byte("{magic: 258, version: 7}"))
	require.NoError(t, err)
	m, ok := v.(layout.Map)
	require.True(t, ok)
	assert.Equal(t, layout.Int(258), m["magic"])
	assert.Equal(t, layout.Int(7), m["version"])

	v, err = ParseValue([]byte(`[1, "two", true]`))
	require.NoError(t, err)
	assert.Equal(t, layout.List{layout.Int(1), layout.String("two"), layout.Bool(true)}, v)

	_, err = ParseValue([]byte(""))
	assert.Error(t, err)

	_, err = ParseValue([]byte("{unclosed"))
	assert.Error(t, err)
}

func TestResolveLayoutFromFile(t *testing.T) {
	isolateContexts(t)
	path := writeFile(t, "header.yaml", headerDoc)

	name, d, err := ResolveLayout(t.Context(), config.GetDefaultConfig(), path)
	require.NoError(t, err)
	assert.Equal(t, "header", name)
	assert.Equal(t, 3, layout.Size(d))
}

func TestResolveLayoutUnknownName(t *testing.T) {
	isolateContexts(t)
	_, _, err := ResolveLayout(t.Context(), config.GetDefaultConfig(), "no-such-layout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a file nor a registered layout")

	_, _, err = ResolveLayout(t.Context(), config.GetDefaultConfig(), "")
	assert.Error(t, err)
}

func TestResolveLayoutFromBadgerRegistry(t *testing.T) {
	isolateContexts(t)
	cfg := config.GetDefaultConfig()
	cfg.Registry.Type = "badger"
	cfg.Registry.Path = t.TempDir()

	path := writeFile(t, "header.yaml", headerDoc)
	_, d, err := ResolveLayout(t.Context(), cfg, path)
	require.NoError(t, err)

	s, err := config.OpenRegistry(t.Context(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(t.Context(), &registry.Layout{Name: "hdr", Descriptor: d}))
	require.NoError(t, s.Close())

	name, got, err := ResolveLayout(t.Context(), cfg, "hdr")
	require.NoError(t, err)
	assert.Equal(t, "hdr", name)
	assert.Equal(t, layout.Size(d), layout.Size(got))
}

func TestCodecOptions(t *testing.T) {
	cfg := config.GetDefaultConfig()

	opts, err := CodecOptions(cfg, "header", "big", false)
	require.NoError(t, err)
	c := codec.New(layout.NewScalar("n", layout.KindInt, layout.Bytes(2)), opts...)
	assert.Equal(t, "header", c.Name())
	assert.Equal(t, layout.Big, c.Endianness())

	_, err = CodecOptions(cfg, "header", "middle", false)
	assert.Error(t, err)
}

func TestPrintOutputEmptyTable(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "table", NoColor: true})

	var buf bytes.Buffer
	require.NoError(t, PrintOutput(&buf, []string{}, true, "No layouts registered.", nil))
	assert.Equal(t, "No layouts registered.\n", buf.String())
}

func TestPrintOutputJSON(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "json"})

	var buf bytes.Buffer
	require.NoError(t, PrintOutput(&buf, map[string]int{"n": 1}, false, "", nil))
	assert.JSONEq(t, `{"n": 1}`, buf.String())
}

func TestPrintOutputRejectsUnknownFormat(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "xml"})
	assert.Error(t, PrintOutput(&bytes.Buffer{}, nil, false, "", nil))
}

func TestRunDeleteWithConfirmationForced(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "table", NoColor: true})

	var (
		buf    bytes.Buffer
		called bool
	)
	err := RunDeleteWithConfirmation(&buf, "layout", "header", true, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, buf.String(), "layout 'header' deleted")
}

func TestRunDeleteWithConfirmationWrapsError(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "table", NoColor: true})

	boom := errors.New("boom")
	err := RunDeleteWithConfirmation(&bytes.Buffer{}, "layout", "header", true, func() error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to delete layout")
}

func TestConfigIsCached(t *testing.T) {
	path := writeFile(t, "config.yaml", "logging:\n  level: WARN\n")
	setFlags(t, GlobalFlags{ConfigFile: path, LogLevel: "debug"})
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg, err := Config()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)

	again, err := Config()
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}

package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerDescriptor() layout.Descriptor {
	return layout.NewStruct("header",
		layout.NewScalar("magic", layout.KindInt, layout.Bytes(4)).WithOrder(layout.Big),
		layout.NewScalar("flags", layout.KindByte, layout.Bits(3)),
		layout.NewFixedText("label", 8),
		layout.NewText("comment"),
		layout.NewArray("samples", layout.NewScalar("sample", layout.KindDouble, layout.Bytes(8)), 4),
	)
}

func TestLoad(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "header.yaml"))
	require.NoError(t, err)
	assert.Equal(t, headerDescriptor(), d)
	assert.Equal(t, 4+1+8+0+32, layout.Size(d))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	doc := `{
		"name": "point",
		"type": "struct",
		"description": [
			{"name": "x", "type": "float", "bytes": 4},
			{"name": "y", "type": "float4", "bytes": 4}
		]
	}`
	d, err := Parse([]byte(doc))
	require.NoError(t, err)

	want := layout.NewStruct("point",
		layout.NewScalar("x", layout.KindFloat, layout.Bytes(4)),
		layout.NewScalar("y", layout.KindFloat, layout.Bytes(4)),
	)
	assert.Equal(t, want, d)
}

func TestParseScalarRoot(t *testing.T) {
	d, err := Parse([]byte("{name: n, type: int, bits: 12}"))
	require.NoError(t, err)
	assert.Equal(t, layout.NewScalar("n", layout.KindInt, layout.Bits(12)), d)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"UnknownType":       "{name: a, type: long, bytes: 8}",
		"UnknownKey":        "{name: a, type: int, bytes: 4, signed: true}",
		"BothWidths":        "{name: a, type: int, bits: 4, bytes: 4}",
		"NoWidth":           "{name: a, type: int}",
		"ZeroBytes":         "{name: a, type: int, bytes: 0}",
		"NegativeSize":      "{name: a, type: array, size: -1, value_description: {name: e, type: byte, bytes: 1}}",
		"ArrayWithoutSize":  "{name: a, type: array, value_description: {name: e, type: byte, bytes: 1}}",
		"ArrayWithoutValue": "{name: a, type: array, size: 2}",
		"StringWithBits":    "{name: a, type: string, bits: 8}",
		"StringWithEndian":  "{name: a, type: string, endian: big}",
		"ScalarWithSize":    "{name: a, type: byte, bytes: 1, size: 2}",
		"BadEndian":         "{name: a, type: int, bytes: 4, endian: middle}",
		"StructWithWidth":   "{name: s, type: struct, bytes: 4, description: []}",
		"DuplicateNames":    "{name: s, type: struct, description: [{name: a, type: byte, bytes: 1}, {name: a, type: byte, bytes: 1}]}",
		"UnnamedField":      "{name: s, type: struct, description: [{type: byte, bytes: 1}]}",
		"NestedBadType":     "{name: s, type: struct, description: [{name: a, type: array, size: 1, value_description: {name: e, type: quad, bytes: 1}}]}",
		"Empty":             "",
		"WrongValueType":    `{name: a, type: int, bytes: "four"}`,
		"HugeArray":         "{name: a, type: array, size: 1099511627776, value_description: {name: e, type: byte, bytes: 1}}",
		"HugeWidth":         "{name: a, type: array, size: 4, value_description: {name: e, type: byte, bytes: 4611686018427387904}}",
		"HugeLayout":        "{name: a, type: array, size: 1048576, value_description: {name: e, type: string, bytes: 4096}}",
		"OddFloatWidth":     "{name: f, type: float, bits: 20}",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("name: [unterminated"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSchema)
}

func TestValidationMessageUsesWireNames(t *testing.T) {
	_, err := Parse([]byte("{name: s, type: struct, description: [{name: a, type: byte, bytes: 0}]}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description[0].bytes")
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(headerDescriptor(), format)
			require.NoError(t, err)

			d, err := Parse(data)
			require.NoError(t, err)
			assert.Equal(t, headerDescriptor(), d)
		})
	}
}

func TestMarshalJSONShape(t *testing.T) {
	data, err := Marshal(layout.NewArray("a", layout.NewText("t"), 2), FormatJSON)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "array", doc["type"])
	assert.Equal(t, float64(2), doc["size"])
	assert.Equal(t, map[string]any{"name": "t", "type": "string"}, doc["value_description"])
}

func TestMarshalUnsupportedFormat(t *testing.T) {
	_, err := Marshal(headerDescriptor(), Format("toml"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestJSONSchema(t *testing.T) {
	data, err := JSONSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "binlayout descriptor", doc["title"])
	assert.Contains(t, string(data), "value_description")
	assert.Contains(t, string(data), "float4")
}

func TestFromDescriptorKeepsFieldOrder(t *testing.T) {
	f := FromDescriptor(headerDescriptor())
	require.Len(t, f.Description, 5)
	names := make([]string, 0, 5)
	for _, c := range f.Description {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"magic", "flags", "label", "comment", "samples"}, names)
	assert.Equal(t, "big", f.Description[0].Endian)
}

func TestLoadWritesBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.yaml")
	data, err := Marshal(headerDescriptor(), FormatYAML)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, headerDescriptor(), d)
}

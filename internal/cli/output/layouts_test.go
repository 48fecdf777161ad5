package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLayout() *registry.Layout {
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return &registry.Layout{
		ID:          uuid.MustParse("5b0f7a4e-0c4b-4bb8-9a55-2f63c1b3d6a1"),
		Name:        "point",
		Description: "a point",
		Descriptor:  point(),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(sampleLayout())
	require.NoError(t, err)

	fp, err := schema.Fingerprint(point())
	require.NoError(t, err)

	assert.Equal(t, "point", s.Name)
	assert.Equal(t, "struct", s.Type)
	assert.Equal(t, 11, s.Size)
	assert.False(t, s.Dynamic)
	assert.Equal(t, fp, s.Fingerprint)
	assert.Equal(t, "5b0f7a4e-0c4b-4bb8-9a55-2f63c1b3d6a1", s.ID)
}

func TestSummarizeDynamic(t *testing.T) {
	l := sampleLayout()
	l.Descriptor = layout.NewStruct("m", layout.NewScalar("n", layout.KindInt, layout.Bytes(4)), layout.NewText("s"))

	s, err := Summarize(l)
	require.NoError(t, err)
	assert.True(t, s.Dynamic)
	assert.Equal(t, ">=4", s.sizeString())
}

func TestLayoutListRows(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })

	ll, err := NewLayoutList([]*registry.Layout{sampleLayout()})
	require.NoError(t, err)
	require.Len(t, ll.Rows(), 1)

	row := ll.Rows()[0]
	assert.Equal(t, []string{"point", "struct", "11"}, row[:3])
	assert.Len(t, row[3], 12)
	assert.Equal(t, "3h", row[4])
}

func TestLayoutDetailJSON(t *testing.T) {
	d, err := NewLayoutDetail(sampleLayout())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, d))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "point", got["name"])
	assert.Equal(t, float64(11), got["size"])
	sch, ok := got["schema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "struct", sch["type"])
}

func TestLayoutDetailYAMLInline(t *testing.T) {
	d, err := NewLayoutDetail(sampleLayout())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, d))
	assert.Contains(t, buf.String(), "name: point\n")
	assert.Contains(t, buf.String(), "schema:\n")
}

func TestPairs(t *testing.T) {
	s, err := Summarize(sampleLayout())
	require.NoError(t, err)

	keys := make([]string, 0)
	for _, p := range s.Pairs() {
		keys = append(keys, p[0])
	}
	assert.Equal(t, []string{"Name", "ID", "Description", "Type", "Size", "Fingerprint", "Created", "Updated"}, keys)
}

func TestFieldList(t *testing.T) {
	d := layout.NewStruct("h",
		layout.NewScalar("magic", layout.KindInt, layout.Bytes(4)).WithOrder(layout.Big),
		layout.NewArray("tags", layout.NewFixedText("t", 2), 3),
		layout.NewText("note"),
		layout.NewScalar("tail", layout.KindByte, layout.Bytes(1)),
	)

	fl := NewFieldList(d)
	rows := fl.Rows()
	require.Len(t, rows, 6)

	assert.Equal(t, []string{".", "struct", "", "", "0", "dyn", ""}, rows[0])
	assert.Equal(t, []string{"magic", "int", "bytes:4", "big", "0", "4", ""}, rows[1])
	assert.Equal(t, []string{"tags", "array", "", "", "4", "6", "3"}, rows[2])
	assert.Equal(t, []string{"tags[]", "string", "bytes:2", "", "4", "2", ""}, rows[3])
	assert.Equal(t, []string{"note", "string", "", "", "10", "dyn", ""}, rows[4])
	assert.Equal(t, []string{"tail", "byte", "bytes:1", "", "dyn", "1", ""}, rows[5])
}

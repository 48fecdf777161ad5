package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Field", "Offset")
	assert.Equal(t, []string{"Field", "Offset"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("magic", "0")
	table.AddRow("flags", "4")
	assert.Equal(t, [][]string{{"magic", "0"}, {"flags", "4"}}, table.Rows())
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Field", "Offset")
	table.AddRow("magic", "0")
	table.AddRow("flags", "4")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "FIELD"))
	assert.Contains(t, lines[1], "magic")
	assert.Contains(t, lines[2], "flags")
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{{"Name", "header"}, {"Size", "25"}}))

	out := buf.String()
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "header")
	assert.Contains(t, out, "25")
	assert.NotContains(t, out, "NAME")
}

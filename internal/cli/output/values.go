package output

import (
	"fmt"
	"strconv"

	"github.com/marmos91/binlayout/pkg/layout"
)

// ValueRow is one scalar or text leaf of a decoded value.
type ValueRow struct {
	Path  string
	Type  string
	Value string
}

// Decoded renders a decoded value. Tables list leaves in wire order; JSON and
// YAML print the plain value tree.
type Decoded struct {
	Descriptor layout.Descriptor
	Value      layout.Value
}

func (d Decoded) Headers() []string {
	return []string{"Path", "Type", "Value"}
}

func (d Decoded) Rows() [][]string {
	leaves := Flatten(d.Descriptor, d.Value)
	rows := make([][]string, len(leaves))
	for i, l := range leaves {
		rows[i] = []string{l.Path, l.Type, l.Value}
	}
	return rows
}

func (d Decoded) MarshalJSON() ([]byte, error) {
	return jsonValue(layout.ToAny(d.Value))
}

func (d Decoded) MarshalYAML() (any, error) {
	return layout.ToAny(d.Value), nil
}

// Flatten lists the leaves of v following d, so struct fields keep their
// wire order. Parts of v that do not match d are rendered with %v.
func Flatten(d layout.Descriptor, v layout.Value) []ValueRow {
	var out []ValueRow
	flatten(d, v, "", &out)
	return out
}

func flatten(d layout.Descriptor, v layout.Value, path string, out *[]ValueRow) {
	switch d := d.(type) {
	case *layout.Array:
		list, ok := v.(layout.List)
		if !ok {
			break
		}
		for i, e := range list {
			flatten(d.Element, e, fmt.Sprintf("%s[%d]", path, i), out)
		}
		return
	case *layout.Struct:
		m, ok := v.(layout.Map)
		if !ok {
			break
		}
		for _, f := range d.Fields {
			name := f.FieldName()
			if e, ok := m[name]; ok {
				flatten(f, e, joinPath(path, name), out)
			}
		}
		return
	}

	if path == "" {
		path = "."
	}
	*out = append(*out, ValueRow{Path: path, Type: layout.TypeName(d), Value: FormatValue(v)})
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// FormatValue renders a leaf value. Text is quoted so trailing spaces and
// control bytes stay visible.
func FormatValue(v layout.Value) string {
	switch v := v.(type) {
	case layout.Bool:
		return strconv.FormatBool(bool(v))
	case layout.Int:
		return strconv.FormatInt(int64(v), 10)
	case layout.Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case layout.String:
		return strconv.Quote(string(v))
	default:
		return fmt.Sprintf("%v", layout.ToAny(v))
	}
}

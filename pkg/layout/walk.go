package layout

// FieldInfo describes one node of a descriptor tree at its static position.
type FieldInfo struct {
	// Path uses the codec's error notation: "points[].x". The root has an
	// empty path.
	Path  string
	Depth int
	Type  string

	// Width is the declared scalar width ("bits:3", "bytes:4"), the fixed
	// text length, or empty.
	Width string

	// Order is the pinned byte order of a scalar, or empty.
	Order string

	// Offset is the byte offset from the start of the buffer, or -1 when it
	// depends on preceding unterminated text.
	Offset int

	// Size is the static byte size, or -1 when the node contains
	// unterminated text.
	Size int

	// Count is the element count of an array.
	Count int
}

// Walk lists d and its descendants in wire order. Array elements appear
// once, under "<name>[]", positioned at the first element.
func Walk(d Descriptor) []FieldInfo {
	var out []FieldInfo
	walk(d, "", 0, 0, &out)
	return out
}

// walk appends d at offset off and returns the offset after it, or -1 when
// that is not static.
func walk(d Descriptor, path string, depth, off int, out *[]FieldInfo) int {
	size := Size(d)
	if HasUnterminatedText(d) {
		size = -1
	}

	info := FieldInfo{Path: path, Depth: depth, Type: TypeName(d), Offset: off, Size: size}

	switch d := d.(type) {
	case *Scalar:
		info.Width = d.Width.String()
		if d.Order != nil {
			info.Order = d.Order.String()
		}
		*out = append(*out, info)
	case *Text:
		if d.Fixed != nil {
			info.Width = Bytes(*d.Fixed).String()
		}
		*out = append(*out, info)
	case *Array:
		info.Count = d.Count
		*out = append(*out, info)
		walk(d.Element, path+"[]", depth+1, off, out)
	case *Struct:
		*out = append(*out, info)
		pos := off
		for _, f := range d.Fields {
			pos = walk(f, joinPath(path, f.FieldName()), depth+1, pos, out)
		}
	default:
		*out = append(*out, info)
	}

	if off < 0 || size < 0 {
		return -1
	}
	return addSat(off, size)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

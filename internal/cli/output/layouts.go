package output

import (
	"strconv"
	"time"

	"github.com/marmos91/binlayout/internal/cli/timeutil"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/schema"
)

// now is replaced in tests.
var now = time.Now

// LayoutSummary is the listing form of a registered layout.
type LayoutSummary struct {
	Name        string    `json:"name" yaml:"name"`
	ID          string    `json:"id" yaml:"id"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string    `json:"type" yaml:"type"`
	Size        int       `json:"size" yaml:"size"`
	Dynamic     bool      `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// Summarize builds the summary of l. Size is the static size; Dynamic is set
// when null-terminated text makes the real size depend on the data.
func Summarize(l *registry.Layout) (LayoutSummary, error) {
	fp, err := schema.Fingerprint(l.Descriptor)
	if err != nil {
		return LayoutSummary{}, err
	}
	return LayoutSummary{
		Name:        l.Name,
		ID:          l.ID.String(),
		Description: l.Description,
		Type:        layout.TypeName(l.Descriptor),
		Size:        layout.Size(l.Descriptor),
		Dynamic:     layout.HasUnterminatedText(l.Descriptor),
		Fingerprint: fp,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}

// LayoutList renders registry listings.
type LayoutList []LayoutSummary

// NewLayoutList summarizes ls in order.
func NewLayoutList(ls []*registry.Layout) (LayoutList, error) {
	out := make(LayoutList, 0, len(ls))
	for _, l := range ls {
		s, err := Summarize(l)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (ll LayoutList) Headers() []string {
	return []string{"Name", "Type", "Size", "Fingerprint", "Updated"}
}

func (ll LayoutList) Rows() [][]string {
	rows := make([][]string, 0, len(ll))
	t := now()
	for _, s := range ll {
		rows = append(rows, []string{s.Name, s.Type, s.sizeString(), shortFingerprint(s.Fingerprint), timeutil.FormatAge(s.UpdatedAt, t)})
	}
	return rows
}

// Pairs returns s as key/value rows for SimpleTable.
func (s LayoutSummary) Pairs() [][2]string {
	pairs := [][2]string{
		{"Name", s.Name},
		{"ID", s.ID},
	}
	if s.Description != "" {
		pairs = append(pairs, [2]string{"Description", s.Description})
	}
	return append(pairs,
		[2]string{"Type", s.Type},
		[2]string{"Size", s.sizeString()},
		[2]string{"Fingerprint", s.Fingerprint},
		[2]string{"Created", timeutil.FormatTime(s.CreatedAt)},
		[2]string{"Updated", timeutil.FormatTime(s.UpdatedAt)},
	)
}

func (s LayoutSummary) sizeString() string {
	n := strconv.Itoa(s.Size)
	if s.Dynamic {
		return ">=" + n
	}
	return n
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

// LayoutDetail is a layout together with its schema document.
type LayoutDetail struct {
	LayoutSummary `yaml:",inline"`
	Schema        schema.Field `json:"schema" yaml:"schema"`
}

// NewLayoutDetail builds the detail view of l.
func NewLayoutDetail(l *registry.Layout) (*LayoutDetail, error) {
	s, err := Summarize(l)
	if err != nil {
		return nil, err
	}
	return &LayoutDetail{LayoutSummary: s, Schema: schema.FromDescriptor(l.Descriptor)}, nil
}

// FieldRow is one line of a field listing.
type FieldRow struct {
	Path   string `json:"path" yaml:"path"`
	Depth  int    `json:"depth" yaml:"depth"`
	Type   string `json:"type" yaml:"type"`
	Width  string `json:"width,omitempty" yaml:"width,omitempty"`
	Order  string `json:"order,omitempty" yaml:"order,omitempty"`
	Offset int    `json:"offset" yaml:"offset"`
	Size   int    `json:"size" yaml:"size"`
	Count  int    `json:"count,omitempty" yaml:"count,omitempty"`
}

// FieldList renders the static field map of a descriptor.
type FieldList []FieldRow

// NewFieldList walks d.
func NewFieldList(d layout.Descriptor) FieldList {
	infos := layout.Walk(d)
	out := make(FieldList, len(infos))
	for i, fi := range infos {
		out[i] = FieldRow(fi)
	}
	return out
}

func (fl FieldList) Headers() []string {
	return []string{"Path", "Type", "Width", "Order", "Offset", "Size", "Count"}
}

func (fl FieldList) Rows() [][]string {
	rows := make([][]string, 0, len(fl))
	for _, f := range fl {
		path := f.Path
		if path == "" {
			path = "."
		}
		count := ""
		if f.Type == schema.TypeArray {
			count = strconv.Itoa(f.Count)
		}
		rows = append(rows, []string{path, f.Type, f.Width, f.Order, dynamicInt(f.Offset), dynamicInt(f.Size), count})
	}
	return rows
}

func dynamicInt(n int) string {
	if n < 0 {
		return "dyn"
	}
	return strconv.Itoa(n)
}

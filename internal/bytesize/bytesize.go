// Package bytesize parses and prints human-readable byte counts such as the
// codec's maximum input size.
package bytesize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes that can be read from strings like "64Ki",
// "16MiB", "1MB" or a plain number.
//
// Binary units (Ki, Mi, Gi, Ti with optional B) multiply by 1024, decimal
// units (K, M, G, T with optional B) by 1000.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

var pattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([a-z]*)\s*$`)

var units = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB,
	"m": MB, "mb": MB,
	"g": GB, "gb": GB,
	"t": TB, "tb": TB,
	"ki": KiB, "kib": KiB,
	"mi": MiB, "mib": MiB,
	"gi": GiB, "gib": GiB,
	"ti": TiB, "tib": TiB,
}

// binary is the largest-first list String tries for an exact rendering.
var binary = []struct {
	unit ByteSize
	name string
}{
	{TiB, "TiB"}, {GiB, "GiB"}, {MiB, "MiB"}, {KiB, "KiB"},
}

// ParseByteSize parses s. Fractions are allowed with a unit ("1.5Ki") and
// truncated to whole bytes.
func ParseByteSize(s string) (ByteSize, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}

	mult, ok := units[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
	}

	if strings.Contains(m[1], ".") {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in byte size: %q", m[1])
		}
		v := f * float64(mult)
		if v >= math.MaxUint64 {
			return 0, fmt.Errorf("byte size out of range: %q", s)
		}
		return ByteSize(v), nil
	}

	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in byte size: %q", m[1])
	}
	if n > math.MaxUint64/uint64(mult) {
		return 0, fmt.Errorf("byte size out of range: %q", s)
	}
	return ByteSize(n) * mult, nil
}

// String renders b with the largest binary unit that divides it exactly,
// so the result parses back to the same value: 16777216 is "16MiB", 1500 is
// "1500B".
func (b ByteSize) String() string {
	if b == 0 {
		return "0B"
	}
	for _, u := range binary {
		if b >= u.unit && b%u.unit == 0 {
			return fmt.Sprintf("%d%s", b/u.unit, u.name)
		}
	}
	return fmt.Sprintf("%dB", uint64(b))
}

// HumanString renders b rounded to two decimals, for display only.
func (b ByteSize) HumanString() string {
	for _, u := range binary {
		if b >= u.unit {
			return fmt.Sprintf("%.2f%s", float64(b)/float64(u.unit), u.name)
		}
	}
	return fmt.Sprintf("%dB", uint64(b))
}

// UnmarshalText implements encoding.TextUnmarshaler, so mapstructure and
// flag parsing accept human-readable sizes.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// MarshalYAML writes b in its exact string form.
func (b ByteSize) MarshalYAML() (any, error) {
	return b.String(), nil
}

// Int returns b as an int, saturating at math.MaxInt.
func (b ByteSize) Int() int {
	if uint64(b) > math.MaxInt {
		return math.MaxInt
	}
	return int(b)
}

// Uint64 returns b as a uint64.
func (b ByteSize) Uint64() uint64 {
	return uint64(b)
}

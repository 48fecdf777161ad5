package layout

import (
	"fmt"
	"strings"
)

// Endianness is a byte-order convention applied at conversion boundaries.
type Endianness uint8

const (
	// Little is least-significant byte first.
	Little Endianness = iota
	// Big is most-significant byte first.
	Big
)

// String returns "little" or "big".
func (e Endianness) String() string {
	switch e {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return fmt.Sprintf("endianness(%d)", uint8(e))
	}
}

// ParseEndianness parses "little"/"le" or "big"/"be" (case-insensitive).
// The empty string parses as Little.
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "little", "le":
		return Little, nil
	case "big", "be":
		return Big, nil
	default:
		return Little, fmt.Errorf("invalid endianness %q (valid: little, big)", s)
	}
}

// Reverse reverses b in place and returns it.
func Reverse(b []byte) []byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

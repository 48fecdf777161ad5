package output

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Encoding is how binary payloads are read from and written to the terminal.
type Encoding string

const (
	// EncodingRaw passes bytes through unchanged.
	EncodingRaw Encoding = "raw"
	// EncodingHex is lower-case hex. Input may contain whitespace.
	EncodingHex Encoding = "hex"
	// EncodingBase64 is standard padded base64.
	EncodingBase64 Encoding = "base64"
	// EncodingDump is a hexdump -C style listing. Output only.
	EncodingDump Encoding = "dump"
)

// ParseEncoding parses s case-insensitively. Empty means raw.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "":
		return EncodingRaw, nil
	case "hex":
		return EncodingHex, nil
	case "base64", "b64":
		return EncodingBase64, nil
	case "dump":
		return EncodingDump, nil
	default:
		return "", fmt.Errorf("invalid encoding: %q (valid: raw, hex, base64, dump)", s)
	}
}

func (e Encoding) String() string {
	return string(e)
}

// WriteBytes writes b to w in encoding e. Text encodings end with a newline.
func WriteBytes(w io.Writer, b []byte, e Encoding) error {
	var err error
	switch e {
	case EncodingRaw:
		_, err = w.Write(b)
	case EncodingHex:
		_, err = fmt.Fprintln(w, hex.EncodeToString(b))
	case EncodingBase64:
		_, err = fmt.Fprintln(w, base64.StdEncoding.EncodeToString(b))
	case EncodingDump:
		_, err = io.WriteString(w, hex.Dump(b))
	default:
		err = fmt.Errorf("unknown encoding: %s", e)
	}
	return err
}

// DecodeBytes turns input read in encoding e back into bytes.
func DecodeBytes(in []byte, e Encoding) ([]byte, error) {
	switch e {
	case EncodingRaw:
		return in, nil
	case EncodingHex:
		s := strings.TrimPrefix(stripSpace(string(in)), "0x")
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
		return b, nil
	case EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(stripSpace(string(in)))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 input: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("encoding %s cannot be used for input", e)
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

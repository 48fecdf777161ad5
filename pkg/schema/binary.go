package schema

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/marmos91/binlayout/pkg/layout"
	"golang.org/x/crypto/blake2b"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the same
// descriptor always produces identical bytes. Fingerprint depends on it.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("schema: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("schema: CBOR decoder initialization failed: " + err.Error())
	}
}

// MarshalBinary returns the compact CBOR form of d, used for persisted
// records.
func MarshalBinary(d layout.Descriptor) ([]byte, error) {
	f := FromDescriptor(d)
	data, err := encMode.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode descriptor: %w", err)
	}
	return data, nil
}

// UnmarshalBinary decodes and validates a descriptor produced by
// MarshalBinary.
func UnmarshalBinary(data []byte) (layout.Descriptor, error) {
	var f Field
	if err := decMode.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode descriptor: %w", err)
	}
	if err := getValidator().Struct(&f); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchema, formatValidation(err))
	}

	d, err := f.Descriptor()
	if err != nil {
		return nil, err
	}
	if err := layout.Validate(d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return d, nil
}

// Fingerprint is a stable content hash of d: the hex BLAKE2b-256 digest of
// its deterministic CBOR form. Structurally equal descriptors share a
// fingerprint whatever document format they were read from.
func Fingerprint(d layout.Descriptor) (string, error) {
	data, err := MarshalBinary(d)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

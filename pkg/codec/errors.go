package codec

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrOutOfBounds is returned when the buffer is shorter than the
	// descriptor requires.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrUndersizedArray is returned by Encode when a list has fewer
	// elements than the array count.
	ErrUndersizedArray = errors.New("undersized array")

	// ErrOversizedArray is returned by Encode when a list has more elements
	// than the array count.
	ErrOversizedArray = errors.New("oversized array")

	// ErrMissingField is returned by Encode when a map lacks a struct field.
	ErrMissingField = errors.New("missing field")

	// ErrInputTooLarge is returned by Decode when the input exceeds the
	// WithMaxInputSize limit.
	ErrInputTooLarge = errors.New("input too large")
)

// FieldError reports a failure at one field of the layout.
type FieldError struct {
	// Path locates the field, e.g. "points[1].x". It is empty for failures
	// of the whole input.
	Path string

	// Offset is the byte offset the field starts at.
	Offset int

	Err error
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("codec: at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("codec: field %s at offset %d: %v", e.Path, e.Offset, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(path string, offset int, err error) error {
	return &FieldError{Path: path, Offset: offset, Err: err}
}

// join appends a struct field name to path.
func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// index appends an array index to path.
func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

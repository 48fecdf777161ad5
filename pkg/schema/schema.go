package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema is wrapped by every error Parse returns for a document
// that is well-formed YAML but not a valid descriptor.
var ErrInvalidSchema = errors.New("invalid schema")

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat parses "yaml", "yml" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml", "":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (valid: yaml, json)", s)
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			return name
		})
	})
	return validate
}

func invalid(path, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSchema, path, msg)
}

// Parse reads a YAML or JSON document into a validated descriptor.
func Parse(data []byte) (layout.Descriptor, error) {
	f, err := ParseField(data)
	if err != nil {
		return nil, err
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

// ParseField reads a YAML or JSON document into its wire form and checks it
// against the struct tag rules. Unknown keys are rejected.
func ParseField(data []byte) (*Field, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSchema)
	}

	var f Field
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &f,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	if err := getValidator().Struct(&f); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchema, formatValidation(err))
	}
	return &f, nil
}

// formatValidation renders validator errors as "path: rule" pairs.
func formatValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s, got %v", ns, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", ns, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Load reads and parses the descriptor file at path.
func Load(path string) (layout.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Marshal renders d in the given format.
func Marshal(d layout.Descriptor, format Format) ([]byte, error) {
	f := FromDescriptor(d)

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal descriptor: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, fmt.Errorf("failed to marshal descriptor: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal descriptor: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// JSONSchema returns the JSON Schema of the descriptor document, for editor
// completion and external validation.
func JSONSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		FieldNameTag:              "yaml",
	}

	s := r.Reflect(&Field{})
	s.Version = "https://json-schema.org/draft/2020-12/schema"
	s.Title = "binlayout descriptor"
	s.Description = "Field layout description consumed by binlayout encoders and decoders"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}
	return data, nil
}

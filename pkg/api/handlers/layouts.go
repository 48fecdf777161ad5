package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/internal/telemetry"
	"github.com/marmos91/binlayout/pkg/bufpool"
	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/schema"
)

// DefaultMaxBody bounds request bodies when no limit is configured.
const DefaultMaxBody = 16 << 20

// LayoutHandler serves the registry and codec endpoints.
type LayoutHandler struct {
	store   registry.Store
	maxBody int64
	opts    []codec.Option
}

// NewLayoutHandler creates a LayoutHandler. opts are applied to every codec
// it builds, before per-request overrides. maxBody <= 0 uses DefaultMaxBody.
func NewLayoutHandler(store registry.Store, maxBody int64, opts ...codec.Option) *LayoutHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &LayoutHandler{store: store, maxBody: maxBody, opts: opts}
}

// LayoutResponse describes one registered layout.
type LayoutResponse struct {
	Name        string        `json:"name"`
	ID          string        `json:"id"`
	Description string        `json:"description,omitempty"`
	Type        string        `json:"type"`
	Size        int           `json:"size"`
	Dynamic     bool          `json:"dynamic"`
	Fingerprint string        `json:"fingerprint"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Schema      *schema.Field `json:"schema,omitempty"`
}

func newLayoutResponse(l *registry.Layout, withSchema bool) (*LayoutResponse, error) {
	fp, err := schema.Fingerprint(l.Descriptor)
	if err != nil {
		return nil, err
	}
	resp := &LayoutResponse{
		Name:        l.Name,
		ID:          l.ID.String(),
		Description: l.Description,
		Type:        layout.TypeName(l.Descriptor),
		Size:        layout.Size(l.Descriptor),
		Dynamic:     layout.HasUnterminatedText(l.Descriptor),
		Fingerprint: fp,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if withSchema {
		f := schema.FromDescriptor(l.Descriptor)
		resp.Schema = &f
	}
	return resp, nil
}

// List handles GET /api/v1/layouts. ?schema=true includes every layout's
// schema document.
func (h *LayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	withSchema, _ := strconv.ParseBool(r.URL.Query().Get("schema"))

	ls, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]*LayoutResponse, 0, len(ls))
	for _, l := range ls {
		resp, err := newLayoutResponse(l, withSchema)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, resp)
	}
	WriteJSONOK(w, map[string]any{"layouts": out})
}

// Get handles GET /api/v1/layouts/{name}. The ETag is the descriptor
// fingerprint, so unchanged layouts answer If-None-Match with 304.
func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}

	resp, err := newLayoutResponse(l, true)
	if err != nil {
		writeError(w, err)
		return
	}

	etag := strconv.Quote(resp.Fingerprint)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	WriteJSONOK(w, resp)
}

// Put handles PUT /api/v1/layouts/{name}. The body is a YAML or JSON
// descriptor document; ?description= sets the layout description.
func (h *LayoutHandler) Put(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	defer bufpool.Put(body)
	d, err := schema.Parse(body)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	status := http.StatusOK
	if _, err := h.store.Get(r.Context(), name); errors.Is(err, registry.ErrNotFound) {
		status = http.StatusCreated
	}

	l := &registry.Layout{Name: name, Description: r.URL.Query().Get("description"), Descriptor: d}
	if err := h.store.Put(r.Context(), l); err != nil {
		writeError(w, err)
		return
	}

	resp, err := newLayoutResponse(l, true)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.InfoCtx(r.Context(), "Layout registered", logger.Layout(name), "fingerprint", resp.Fingerprint)
	WriteJSON(w, status, resp)
}

// Delete handles DELETE /api/v1/layouts/{name}.
func (h *LayoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.store.Delete(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	logger.InfoCtx(r.Context(), "Layout deleted", logger.Layout(name))
	WriteNoContent(w)
}

// DecodeResponse is the result of decoding a buffer.
type DecodeResponse struct {
	Layout string `json:"layout"`
	Size   int    `json:"size"`
	Value  any    `json:"value"`
}

// Decode handles POST /api/v1/layouts/{name}/decode. The body is the raw
// buffer; ?endian= and ?terminated= override the service defaults.
func (h *LayoutHandler) Decode(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	c, ok := h.codecFor(w, r, l)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	defer bufpool.Put(body)

	ctx, span := telemetry.StartCodecSpan(r.Context(), "decode", l.Name,
		telemetry.Bytes(len(body)), telemetry.Endianness(c.Endianness().String()))
	defer span.End()

	v, err := c.Decode(body)
	if err != nil {
		telemetry.RecordError(ctx, err)
		writeError(w, err)
		return
	}
	n, err := c.Measure(body)
	if err != nil {
		telemetry.RecordError(ctx, err)
		writeError(w, err)
		return
	}

	WriteJSONOK(w, DecodeResponse{Layout: l.Name, Size: n, Value: jsonSafe(layout.ToAny(v))})
}

// Encode handles POST /api/v1/layouts/{name}/encode. The body is the JSON
// value; the response is the encoded buffer.
func (h *LayoutHandler) Encode(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	c, ok := h.codecFor(w, r, l)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	defer bufpool.Put(body)

	v, err := parseValue(body)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	ctx, span := telemetry.StartCodecSpan(r.Context(), "encode", l.Name,
		telemetry.Endianness(c.Endianness().String()))
	defer span.End()

	buf, err := c.Encode(v)
	if err != nil {
		telemetry.RecordError(ctx, err)
		writeError(w, err)
		return
	}
	telemetry.SetAttributes(ctx, telemetry.Bytes(len(buf)))

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf)
}

// SizeResponse reports the size of a layout.
type SizeResponse struct {
	Layout  string `json:"layout"`
	Size    int    `json:"size"`
	Dynamic bool   `json:"dynamic"`
}

// Size handles GET /api/v1/layouts/{name}/size with the static size, and
// POST with the size the layout occupies in the posted buffer.
func (h *LayoutHandler) Size(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	dynamic := layout.HasUnterminatedText(l.Descriptor)

	if r.Method != http.MethodPost {
		WriteJSONOK(w, SizeResponse{Layout: l.Name, Size: layout.Size(l.Descriptor), Dynamic: dynamic})
		return
	}

	c, ok := h.codecFor(w, r, l)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	defer bufpool.Put(body)
	n, err := c.Measure(body)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSONOK(w, SizeResponse{Layout: l.Name, Size: n, Dynamic: dynamic})
}

// Schema handles GET /api/v1/schema with the JSON Schema of descriptor
// documents.
func (h *LayoutHandler) Schema(w http.ResponseWriter, r *http.Request) {
	data, err := schema.JSONSchema()
	if err != nil {
		InternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *LayoutHandler) lookup(w http.ResponseWriter, r *http.Request) (*registry.Layout, bool) {
	l, err := h.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return l, true
}

// codecFor builds the codec for l with the request's overrides applied.
func (h *LayoutHandler) codecFor(w http.ResponseWriter, r *http.Request, l *registry.Layout) (*codec.Codec, bool) {
	opts := append([]codec.Option{codec.WithName(l.Name)}, h.opts...)

	q := r.URL.Query()
	if s := q.Get("endian"); s != "" {
		e, err := layout.ParseEndianness(s)
		if err != nil {
			BadRequest(w, err.Error())
			return nil, false
		}
		opts = append(opts, codec.WithEndianness(e))
	}
	if s := q.Get("terminated"); s != "" {
		on, err := strconv.ParseBool(s)
		if err != nil {
			BadRequest(w, fmt.Sprintf("invalid terminated flag %q", s))
			return nil, false
		}
		if on {
			opts = append(opts, codec.WithTerminatedText())
		}
	}
	return codec.New(l.Descriptor, opts...), true
}

// readBody reads the request body into a pooled buffer the caller returns
// with bufpool.Put.
func (h *LayoutHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := bufpool.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody), r.ContentLength)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return body, true
}

// writeError maps registry, codec and transport errors to problem responses.
func writeError(w http.ResponseWriter, err error) {
	var fe *codec.FieldError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, registry.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, registry.ErrInvalidName), errors.Is(err, registry.ErrInvalidLayout):
		BadRequest(w, err.Error())
	case errors.As(err, &tooLarge), errors.Is(err, codec.ErrInputTooLarge):
		RequestEntityTooLarge(w, err.Error())
	case errors.As(err, &fe):
		offset := fe.Offset
		writeProblem(w, &Problem{
			Status: http.StatusBadRequest,
			Detail: fe.Err.Error(),
			Field:  fe.Path,
			Offset: &offset,
		})
	default:
		logger.Error("API request failed", logger.Err(err))
		InternalServerError(w, "internal error")
	}
}

// parseValue reads a JSON document into a Value. Integral numbers become
// Int so 64-bit integers survive without float rounding.
func parseValue(body []byte) (layout.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var x any
	if err := dec.Decode(&x); err != nil {
		return nil, fmt.Errorf("invalid JSON value: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON value: trailing data")
	}

	n, err := normalizeNumbers(x)
	if err != nil {
		return nil, err
	}
	return layout.FromAny(n)
}

func normalizeNumbers(x any) (any, error) {
	switch x := x.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", x)
		}
		return f, nil
	case []any:
		for i, e := range x {
			n, err := normalizeNumbers(e)
			if err != nil {
				return nil, err
			}
			x[i] = n
		}
		return x, nil
	case map[string]any:
		for k, e := range x {
			n, err := normalizeNumbers(e)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	default:
		return x, nil
	}
}

// jsonSafe replaces NaN and infinities, which JSON cannot carry, with their
// string names.
func jsonSafe(x any) any {
	switch x := x.(type) {
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "+Inf"
		case math.IsInf(x, -1):
			return "-Inf"
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = jsonSafe(e)
		}
		return x
	case map[string]any:
		for k, e := range x {
			x[k] = jsonSafe(e)
		}
		return x
	default:
		return x
	}
}

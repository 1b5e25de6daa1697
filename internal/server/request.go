package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apierr "github.com/matzehuels/alchemytree/pkg/errors"
	"github.com/matzehuels/alchemytree/pkg/observability"
	"github.com/matzehuels/alchemytree/pkg/pipeline"
)

// layoutRequest is the body of /api/layout and /api/reveal.
type layoutRequest struct {
	Recipe            json.RawMessage `json:"recipe"`
	Format            string          `json:"format,omitempty"` // Format of a string recipe: json, yaml, or empty to sniff
	Target            string          `json:"target,omitempty"`
	HorizontalSpacing float64         `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64         `json:"vertical_spacing,omitempty"`
	ParentEdges       *bool           `json:"parent_edges,omitempty"`
	Refresh           bool            `json:"refresh,omitempty"`

	// Layout only
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Levels   int      `json:"levels,omitempty"`

	// Reveal only
	Delay string `json:"delay,omitempty"` // Go duration, e.g. "500ms"
}

// recipeDocument returns the submitted recipe document. A JSON string holds
// the document text; anything else is the document itself.
func (req *layoutRequest) recipeDocument() ([]byte, error) {
	raw := bytes.TrimSpace(req.Recipe)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, apierr.New(apierr.ErrCodeInvalidInput, "recipe is required")
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "recipe string")
	}
	return []byte(text), nil
}

// delay returns the requested reveal interval, or the server default.
func (req *layoutRequest) delay(def, minDelay time.Duration) (time.Duration, error) {
	if req.Delay == "" {
		return def, nil
	}
	d, err := time.ParseDuration(req.Delay)
	if err != nil {
		return 0, apierr.Wrap(apierr.ErrCodeInvalidOption, err, "delay")
	}
	if err := apierr.ValidateDelay(d, minDelay); err != nil {
		return 0, err
	}
	return d, nil
}

// decodeRequest reads a layoutRequest and converts it to pipeline options
// with the server's defaults applied.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (layoutRequest, pipeline.Options, error) {
	var req layoutRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, pipeline.Options{}, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return req, pipeline.Options{}, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "decode request")
	}

	doc, err := req.recipeDocument()
	if err != nil {
		return req, pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Recipe:            doc,
		Format:            req.Format,
		Target:            req.Target,
		Catalog:           s.cfg.Catalog,
		CatalogHash:       s.cfg.CatalogHash,
		Refresh:           req.Refresh,
		HorizontalSpacing: req.HorizontalSpacing,
		VerticalSpacing:   req.VerticalSpacing,
		ParentEdges:       s.cfg.ParentEdges,
		Formats:           req.Formats,
		Detailed:          req.Detailed,
		Levels:            req.Levels,
		TTL:               s.cfg.TTL,
		Logger:            s.logger,
	}
	if opts.HorizontalSpacing == 0 {
		opts.HorizontalSpacing = s.cfg.HorizontalSpacing
	}
	if opts.VerticalSpacing == 0 {
		opts.VerticalSpacing = s.cfg.VerticalSpacing
	}
	if req.ParentEdges != nil {
		opts.ParentEdges = *req.ParentEdges
	}
	return req, opts, nil
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    apierr.Code `json:"code"`
	Message string      `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError answers with the status implied by err's code. Uncoded errors
// are internal.
func writeError(w http.ResponseWriter, err error) {
	code := apierr.GetCode(err)
	if code == "" {
		code = apierr.ErrCodeInternal
	}
	writeJSON(w, code.Status(), errorBody{Code: code, Message: apierr.UserMessage(err)})
}

// fail reports err to the HTTP hooks, logs server-side failures, and writes
// the error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	code := apierr.GetCode(err)
	if code == "" || code.Status() >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}

func notFound(r *http.Request) error {
	return apierr.New(apierr.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/catdiagram/pkg/commute"
	errs "github.com/matzehuels/catdiagram/pkg/errors"
	dio "github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/layout"
	"github.com/matzehuels/catdiagram/pkg/library"
	"github.com/matzehuels/catdiagram/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// DocumentRequest is the body of every POST route.
type DocumentRequest struct {
	Document dio.Document     `json:"document"`
	Options  pipeline.Options `json:"options"`

	// Timeout bounds the search, as a Go duration string ("30s").
	Timeout string `json:"timeout,omitempty"`

	// Libraries names stored axiom libraries added to the document's axioms.
	Libraries []string `json:"libraries,omitempty"`
}

// LayoutResponse is returned by POST /v1/layout.
type LayoutResponse struct {
	Grid   *layout.Grid `json:"grid"`
	Cost   int          `json:"cost"`
	Cached bool         `json:"cached"`
}

// RenderResponse is returned by POST /v1/render. Text formats are returned
// verbatim; pdf and png are base64-encoded.
type RenderResponse struct {
	Grid      *layout.Grid      `json:"grid"`
	Artifacts map[string]string `json:"artifacts"`
	Cached    bool              `json:"cached"`
}

// CheckResponse is returned by POST /v1/check.
type CheckResponse struct {
	Result *commute.Result `json:"result"`
	Cached bool            `json:"cached"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorBody describes one error.
type ErrorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, p, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	grid, hit, err := s.runner.Layout(r.Context(), p.Target, s.options(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{Grid: grid, Cost: grid.Cost(p.Target), Cached: hit})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, p, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.options(req)
	grid, layoutHit, err := s.runner.Layout(r.Context(), p.Target, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(r.Context(), p.Target, grid, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make(map[string]string, len(artifacts))
	for format, data := range artifacts {
		switch format {
		case pipeline.FormatPDF, pipeline.FormatPNG:
			out[format] = base64.StdEncoding.EncodeToString(data)
		default:
			out[format] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, RenderResponse{Grid: grid, Artifacts: out, Cached: layoutHit && renderHit})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	req, p, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.options(req)
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "invalid timeout %q", req.Timeout))
			return
		}
		opts.Timeout = d
	}

	axioms := p.Axioms.Axioms()
	if len(req.Libraries) > 0 {
		if s.cfg.Library == nil {
			s.writeError(w, r, errs.New(errs.ErrCodeUnsupported, "no axiom library is configured"))
			return
		}
		stored, err := library.Axioms(r.Context(), s.cfg.Library, req.Libraries...)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		axioms = append(axioms, stored...)
	}

	res, hit, err := s.runner.Check(r.Context(), p.Target, axioms, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Result: res, Cached: hit})
}

func (s *Server) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Library == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeUnsupported, "no axiom library is configured"))
		return
	}
	list, err := s.cfg.Library.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []library.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleLibraryGet(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Library == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeUnsupported, "no axiom library is configured"))
		return
	}
	name := chi.URLParam(r, "name")
	if err := library.ValidateName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.cfg.Library.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// =============================================================================
// Helpers
// =============================================================================

// decode reads a DocumentRequest and builds its document.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*DocumentRequest, *dio.Problem, error) {
	var req DocumentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "malformed request body")
	}
	p, err := req.Document.Build()
	if err != nil {
		return nil, nil, err
	}
	return &req, p, nil
}

// options merges the request options over the server defaults. Groups
// declared in the document apply when the request names none.
func (s *Server) options(req *DocumentRequest) pipeline.Options {
	opts := pipeline.Merge(s.cfg.Defaults, req.Options)
	if len(opts.Groups) == 0 && req.Document.Diagram != nil {
		opts.Groups = req.Document.Diagram.Groups
	}
	opts.Logger = s.logger
	return opts
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := errs.Classify(err)
	status := errs.HTTPStatus(e.Code)
	msg := errs.UserMessage(e)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "error", err)
		msg = e.Message
	}
	writeJSON(w, status, ErrorResponse{
		Error:     ErrorBody{Code: e.Code, Message: msg},
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

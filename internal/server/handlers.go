package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/keyplate/pkg/buildinfo"
	"github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/observability"
	"github.com/matzehuels/keyplate/pkg/pipeline"
	"github.com/matzehuels/keyplate/pkg/plate"
)

// maxBodyBytes leaves room for JSON framing around the largest layout.
const maxBodyBytes = errors.MaxLayoutBytes + 64<<10

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Fragment  string `json:"fragment,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type keysResponse struct {
	RequestID string      `json:"request_id"`
	Unit      float64     `json:"unit"`
	Count     int         `json:"count"`
	Keys      []plate.Key `json:"keys"`
}

// plateRequest is the body of POST /v1/plate. Options use the pipeline's
// JSON field names; the layout is taken from the top level.
type plateRequest struct {
	Layout  string           `json:"layout"`
	Options pipeline.Options `json:"options"`
}

type plateResponse struct {
	RunID string       `json:"run_id"`
	Plate *plate.Plate `json:"plate"`
	Cache cacheInfo    `json:"cache"`
}

type cacheInfo struct {
	Parse  bool `json:"parse"`
	Plate  bool `json:"plate"`
	Export bool `json:"export"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// handleKeys interprets the raw request body as layout text.
func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	opts := pipeline.Options{Layout: string(body)}
	if u := r.URL.Query().Get("unit"); u != "" {
		unit, err := strconv.ParseFloat(u, 64)
		if err != nil {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "unit must be a number, got %q", u))
			return
		}
		if err := errors.ValidatePositive("unit", unit); err != nil {
			s.fail(w, r, err)
			return
		}
		opts.Unit = unit
	}
	s.defaults.Apply(&opts)
	if opts.Unit == 0 {
		opts.Unit = plate.DefaultUnit
	}

	keys, err := s.runner.Parse(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(keys) == 0 {
		s.fail(w, r, errors.New(errors.ErrCodeNoKeys, "layout has no keys"))
		return
	}
	writeJSON(w, http.StatusOK, keysResponse{
		RequestID: RequestIDFrom(r.Context()),
		Unit:      opts.Unit,
		Count:     len(keys),
		Keys:      keys,
	})
}

// handlePlate runs the full pipeline. With ?format=toml the response body
// is the TOML document instead of the JSON envelope.
func (s *Server) handlePlate(w http.ResponseWriter, r *http.Request) {
	var req plateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}

	opts := req.Options
	if req.Layout != "" {
		opts.Layout = req.Layout
	}
	opts.Name = RequestIDFrom(r.Context())
	opts.Formats = []string{format}
	s.defaults.Apply(&opts)

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if format == pipeline.FormatTOML {
		w.Header().Set("Content-Type", "application/toml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[pipeline.FormatTOML])
		return
	}
	writeJSON(w, http.StatusOK, plateResponse{
		RunID: result.RunID,
		Plate: result.Plate,
		Cache: cacheInfo{
			Parse:  result.CacheInfo.ParseHit,
			Plate:  result.CacheInfo.PlateHit,
			Export: result.CacheInfo.ExportHit,
		},
	})
}

// fail maps err to a status code and writes the error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestIDFrom(r.Context()), "path", r.URL.Path, "err", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		Fragment:  errors.FragmentOf(err),
		RequestID: RequestIDFrom(r.Context()),
	}})
}

// statusFor maps error codes to HTTP status codes. Layout errors are 422
// because the request was well formed but its layout cannot be used.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	switch code := errors.GetCode(err); {
	case code == errors.ErrCodeMalformedLayout, code == errors.ErrCodeNoKeys:
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, code, msg, requestID string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg, RequestID: requestID}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

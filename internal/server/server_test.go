package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/keyplate/internal/config"
	"github.com/matzehuels/keyplate/pkg/cache"
	"github.com/matzehuels/keyplate/pkg/observability"
	"github.com/matzehuels/keyplate/pkg/pipeline"
	"github.com/matzehuels/keyplate/pkg/plate"
)

const testLayout = `["Esc","1","2"],[{w:2.25},"Shift","z"]`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	return New(runner, logger, config.Default().Plate)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v\n%s", err, rec.Body.String())
	}
	return body.Error
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestVersion(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/version", "")
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"version", "commit", "date", "go_version"} {
		if got[k] == "" {
			t.Errorf("missing %q in %v", k, got)
		}
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	id := rec.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-Id = %q, want a UUID", id)
	}

	want := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, want)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != want {
		t.Errorf("X-Request-Id = %q, want incoming %q", got, want)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "not a uuid\n")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got == "not a uuid\n" {
		t.Error("malformed incoming request ID should be replaced")
	}
}

func TestKeys(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/keys", testLayout)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got keysResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 5 || len(got.Keys) != 5 {
		t.Fatalf("count = %d, keys = %d, want 5", got.Count, len(got.Keys))
	}
	if got.Unit != plate.DefaultUnit {
		t.Errorf("unit = %g, want %g", got.Unit, plate.DefaultUnit)
	}
	unit := plate.DefaultUnit
	if got.Keys[3].Label != "Shift" || got.Keys[3].Size.X != 2.25*unit {
		t.Errorf("keys[3] = %+v", got.Keys[3])
	}
}

func TestKeysUnit(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/keys?unit=1", `["a","b"]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got keysResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Keys[1].Center.X != 1.5 || got.Keys[1].Center.Y != -0.5 {
		t.Errorf("b center = %+v, want (1.5, -0.5)", got.Keys[1].Center)
	}
}

func TestKeysErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"empty body", "/v1/keys", "", http.StatusUnprocessableEntity, "NO_KEYS"},
		{"whitespace body", "/v1/keys", " \n ", http.StatusUnprocessableEntity, "NO_KEYS"},
		{"bad unit", "/v1/keys?unit=abc", `["a"]`, http.StatusBadRequest, "INVALID_INPUT"},
		{"zero unit", "/v1/keys?unit=0", `["a"]`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed", "/v1/keys", `["a",{w:}]`, http.StatusUnprocessableEntity, "MALFORMED_LAYOUT"},
		{"no keys", "/v1/keys", `[{w:2}]`, http.StatusUnprocessableEntity, "NO_KEYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			detail := decodeError(t, rec)
			if detail.Code != tt.code {
				t.Errorf("code = %q, want %q", detail.Code, tt.code)
			}
			if detail.RequestID == "" {
				t.Error("error body should carry the request ID")
			}
		})
	}
}

func TestKeysMalformedKeepsFragment(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/keys", `["a",{w:}]`)
	if got := decodeError(t, rec).Fragment; got != `["a",{w:}]` {
		t.Errorf("fragment = %q", got)
	}
}

func TestPlateNonFiniteModifier(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		field  string
	}{
		{"nan width", `[{w:"nan"},"a"]`, `field "w"`},
		{"inf x", `[{x:"inf"},"a"]`, `field "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"layout": ` + jsonString(tt.layout) + `}`
			rec := do(t, newTestServer(t), http.MethodPost, "/v1/plate", body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
			}
			detail := decodeError(t, rec)
			if detail.Code != "MALFORMED_LAYOUT" {
				t.Errorf("code = %q, want MALFORMED_LAYOUT", detail.Code)
			}
			if !strings.Contains(detail.Message, tt.field) {
				t.Errorf("message = %q, want it to name %s", detail.Message, tt.field)
			}
		})
	}
}

func TestKeysMalformedNamesField(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/keys", `[{w:"wide"},"a"]`)
	detail := decodeError(t, rec)
	if !strings.Contains(detail.Message, "row 0 token 0") || !strings.Contains(detail.Message, `field "w"`) {
		t.Errorf("message = %q, want position and field", detail.Message)
	}
}

func TestPlate(t *testing.T) {
	body := `{"layout": ` + jsonString(testLayout) + `, "options": {"margin": 0, "stabilizer": "kad"}}`
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/plate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got plateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.RunID == "" {
		t.Error("run_id should be set")
	}
	if got.Plate == nil || len(got.Plate.Switches) != 5 {
		t.Fatalf("plate = %+v", got.Plate)
	}
	if got.Plate.Margin != 0 {
		t.Errorf("margin = %g, want explicit 0", got.Plate.Margin)
	}
	if len(got.Plate.Stabilizers) != 1 || got.Plate.Stabilizers[0].Decision.Key != 3 {
		t.Errorf("want one stabilizer on Shift, got %+v", got.Plate.Stabilizers)
	}
}

func TestPlateTOML(t *testing.T) {
	body := `{"layout": ` + jsonString(testLayout) + `}`
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/plate?format=toml", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/toml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "[[switches]]") {
		t.Errorf("body is not a TOML plate:\n%s", rec.Body.String())
	}
}

func TestPlateErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"not json", "/v1/plate", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", "/v1/plate", `{"layout": "[\"a\"]", "colour": 1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no layout", "/v1/plate", `{}`, http.StatusUnprocessableEntity, "NO_KEYS"},
		{"bad format", "/v1/plate?format=dxf", `{"layout": "[\"a\"]"}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad stabilizer", "/v1/plate", `{"layout": "[\"a\"]", "options": {"stabilizer": "x"}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed", "/v1/plate", `{"layout": "[\"a\""}`, http.StatusUnprocessableEntity, "MALFORMED_LAYOUT"},
		{"no keys", "/v1/plate", `{"layout": "[{x:1}]"}`, http.StatusUnprocessableEntity, "NO_KEYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if got := decodeError(t, rec).Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/v1/plate", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/plate = %d, want 405", rec.Code)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
	errors   int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func (h *recordingHooks) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	s := newTestServer(t)
	do(t, s, http.MethodGet, "/healthz", "")
	do(t, s, http.MethodPost, "/v1/keys", `[{w:2}]`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 422 {
		t.Errorf("statuses = %v, want [200 422]", hooks.statuses)
	}
	if hooks.errors != 1 {
		t.Errorf("errors = %d, want 1", hooks.errors)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(context.Canceled); got != http.StatusInternalServerError {
		t.Errorf("plain error = %d, want 500", got)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

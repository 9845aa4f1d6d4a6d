package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/belak/authgate/pkg/auth/secret"
	"github.com/belak/authgate/pkg/transport"
)

// newTestRouter returns a router guarded by the placeholder secret, with
// logs captured in the returned buffer.
func newTestRouter(t *testing.T) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	r := NewRouter(RouterConfig{
		Validator:   secret.New("hello world", "belak"),
		Errors:      &transport.ErrorWriter{Realm: "authgate", Logger: logger},
		Logger:      logger,
		MetricsPath: "/metrics",
	})
	return r, &logs
}

func do(t *testing.T, h http.Handler, method, target, authz string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	b, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return strings.TrimSpace(string(b))
}

func TestRouterScenarios(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name         string
		method       string
		target       string
		authz        string
		wantStatus   int
		wantBody     string
		wantContains string
	}{
		{
			name:       "bearer header accepted",
			method:     "GET",
			target:     "/example",
			authz:      "Bearer hello world",
			wantStatus: http.StatusOK,
			wantBody:   `{"name":"belak"}`,
		},
		{
			name:       "wrong bearer token",
			method:     "GET",
			target:     "/example",
			authz:      "Bearer wrong",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"code":401,"message":"unauthorized"}`,
		},
		{
			name:       "query token accepted",
			method:     "GET",
			target:     "/example?token=hello%20world",
			wantStatus: http.StatusOK,
			wantBody:   `{"name":"belak"}`,
		},
		{
			name:         "basic scheme",
			method:       "GET",
			target:       "/example",
			authz:        "Basic xyz",
			wantStatus:   http.StatusBadRequest,
			wantContains: "invalid scheme",
		},
		{
			name:         "no credentials",
			method:       "GET",
			target:       "/example",
			wantStatus:   http.StatusBadRequest,
			wantContains: "no token specified",
		},
		{
			name:         "header and query",
			method:       "GET",
			target:       "/example?token=hello%20world",
			authz:        "Bearer hello world",
			wantStatus:   http.StatusBadRequest,
			wantContains: "multiple tokens specified",
		},
		{
			name:       "unknown route",
			method:     "GET",
			target:     "/nope",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":404,"message":"not found"}`,
		},
		{
			name:       "unknown route skips auth",
			method:     "GET",
			target:     "/nope",
			authz:      "Basic xyz",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":404,"message":"not found"}`,
		},
		{
			name:       "wrong method",
			method:     "POST",
			target:     "/example",
			authz:      "Bearer hello world",
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"code":405,"message":"method not allowed"}`,
		},
		{
			name:       "wrong method skips auth",
			method:     "DELETE",
			target:     "/example",
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"code":405,"message":"method not allowed"}`,
		},
		{
			name:       "empty query token",
			method:     "GET",
			target:     "/example?token=",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":400,"message":"invalid auth token: missing token"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.authz)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			got := body(t, rec)
			if tt.wantBody != "" && got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
			if tt.wantContains != "" && !strings.Contains(got, tt.wantContains) {
				t.Errorf("body = %s, want it to contain %q", got, tt.wantContains)
			}
		})
	}
}

func TestRouterErrorBodyShape(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, target := range []string{"/example", "/example?token=x", "/missing"} {
		rec := do(t, h, "GET", target, "")
		if rec.Code < 400 {
			continue
		}

		var payload struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
			t.Fatalf("%s: decoding error body: %v", target, err)
		}
		if payload.Code != rec.Code {
			t.Errorf("%s: body code = %d, status = %d", target, payload.Code, rec.Code)
		}
		if payload.Message == "" {
			t.Errorf("%s: empty message", target)
		}
	}
}

func TestRouterChallengeHeader(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, "GET", "/example", "Bearer wrong")
	if got := rec.Header().Get("WWW-Authenticate"); got != `Bearer realm="authgate"` {
		t.Errorf("WWW-Authenticate = %q, want Bearer challenge", got)
	}

	rec = do(t, h, "GET", "/example", "Bearer hello world")
	if got := rec.Header().Get("WWW-Authenticate"); got != "" {
		t.Errorf("WWW-Authenticate on success = %q, want empty", got)
	}
}

func TestRouterValidationIsDeterministic(t *testing.T) {
	h, _ := newTestRouter(t)

	for i := 0; i < 3; i++ {
		if rec := do(t, h, "GET", "/example", "Bearer hello world"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want 200", i, rec.Code)
		}
		if rec := do(t, h, "GET", "/example", "Bearer nope"); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i, rec.Code)
		}
	}
}

func TestRouterPanicBecomesInternalError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	r := NewRouter(RouterConfig{
		Validator: secret.New("hello world", "belak"),
		Logger:    logger,
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom: db password is hunter2")
	})

	rec := do(t, r, "GET", "/boom", "")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	got := body(t, rec)
	if got != `{"code":500,"message":"internal error"}` {
		t.Errorf("body = %s, want generic internal error", got)
	}
	if !strings.Contains(logs.String(), "hunter2") {
		t.Errorf("panic detail missing from server log: %q", logs.String())
	}
}

func TestRouterLogsOnlyInternalErrors(t *testing.T) {
	h, logs := newTestRouter(t)

	do(t, h, "GET", "/example", "Bearer wrong")
	do(t, h, "GET", "/example", "Basic xyz")
	do(t, h, "GET", "/nope", "")

	if strings.Contains(logs.String(), "level=ERROR") {
		t.Errorf("client errors were logged at ERROR: %q", logs.String())
	}
}

func TestRouterRequestID(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, "GET", "/nope", "")
	if rec.Header().Get(transport.RequestIDHeader) == "" {
		t.Error("missing X-Request-ID on error response")
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(transport.RequestIDHeader, "trace-me")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(transport.RequestIDHeader); got != "trace-me" {
		t.Errorf("X-Request-ID = %q, want %q", got, "trace-me")
	}
}

func TestRouterHealthzAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, "GET", "/healthz", "")
	if rec.Code != http.StatusOK || body(t, rec) != "ok" {
		t.Errorf("healthz = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}

	do(t, h, "GET", "/example", "Bearer hello world")
	rec = do(t, h, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "authgate_auth_outcomes_total") {
		t.Error("metrics exposition is missing authgate_auth_outcomes_total")
	}
}

func TestRouterMetricsDisabled(t *testing.T) {
	r := NewRouter(RouterConfig{Validator: secret.New("x", "y")})

	if rec := do(t, r, "GET", "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when metrics are disabled", rec.Code)
	}
}

func TestRoutes(t *testing.T) {
	r := NewRouter(RouterConfig{Validator: secret.New("x", "y"), MetricsPath: "/metrics"})

	routes, err := Routes(r)
	if err != nil {
		t.Fatalf("Routes() error: %v", err)
	}

	want := []Route{
		{Method: "GET", Pattern: "/example"},
		{Method: "GET", Pattern: "/healthz"},
		{Method: "GET", Pattern: "/metrics"},
	}
	if len(routes) != len(want) {
		t.Fatalf("Routes() = %v, want %v", routes, want)
	}
	for i := range want {
		if routes[i] != want[i] {
			t.Errorf("routes[%d] = %+v, want %+v", i, routes[i], want[i])
		}
	}
}

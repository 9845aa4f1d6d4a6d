package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/belak/authgate/pkg/api"
	"github.com/belak/authgate/pkg/auth"
	"github.com/belak/authgate/pkg/observability"
	"github.com/belak/authgate/pkg/transport"
)

// Route paths served by the router.
const (
	PathExample = "/example"
	PathHealthz = "/healthz"
)

// RouterConfig holds the dependencies of the HTTP router.
type RouterConfig struct {
	// Validator decides who may call the protected route. Required.
	Validator auth.Validator

	// Errors renders every failure. Defaults to an ErrorWriter with the
	// default realm and Logger.
	Errors *transport.ErrorWriter

	// Logger is used for access logs. Defaults to slog.Default().
	Logger *slog.Logger

	// MetricsPath mounts the Prometheus handler. Empty disables it.
	MetricsPath string
}

// NewRouter builds the authgate route table. Unknown paths and wrong
// methods are answered through the same error mapper as auth failures,
// and authentication runs only once a request has matched the protected
// route.
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errs := cfg.Errors
	if errs == nil {
		errs = &transport.ErrorWriter{Logger: logger}
	}

	r := chi.NewRouter()
	r.Use(
		transport.RequestID(),
		transport.Logging(logger),
		observability.MetricsMiddleware,
		transport.Recovery(errs),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errs.Write(w, req, api.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		errs.Write(w, req, api.ErrMethodNotAllowed)
	})

	r.Get(PathHealthz, handleHealthz)
	if cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, observability.Handler())
	}

	r.With(auth.Middleware(cfg.Validator, errs.Write)).
		Get(PathExample, exampleHandler(errs))

	return r
}

var errMissingPrincipal = errors.New("protected handler reached without a principal")

// exampleHandler answers with the authenticated principal.
func exampleHandler(errs *transport.ErrorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFromContext(r.Context())
		if p == nil {
			errs.Write(w, r, errMissingPrincipal)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Route is one entry of the route table.
type Route struct {
	Method  string
	Pattern string
}

// Routes lists the routes registered on r, sorted by pattern then method.
func Routes(r chi.Routes) ([]Route, error) {
	var routes []Route
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, Route{Method: method, Pattern: route})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes, nil
}

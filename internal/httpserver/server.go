package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/audit"
	"indus/hrportal/internal/auth"
	"indus/hrportal/internal/config"
	"indus/hrportal/internal/observability"
	"indus/hrportal/internal/screens"
)

type AuthService interface {
	SignIn(ctx context.Context, username, password, replaceToken string) (auth.SignInResult, error)
	ValidateToken(token string) (auth.Session, error)
	Logout(token string) error
}

type Workspaces interface {
	Get(sess auth.Session) *screens.Workspace
	Drop(sessionID string)
}

type AuditLogger interface {
	Record(e audit.Event) error
}

type Deps struct {
	Auth       AuthService
	Workspaces Workspaces
	Audit      AuditLogger
	Metrics    *observability.Metrics
	Logger     *logrus.Entry
	// Ready reports whether the session backend is reachable.
	Ready           func(ctx context.Context) error
	FrontendDistDir string
	AllowedOrigins  []string
	// SignInRateLimit is a limiter rate such as "10-M". Empty disables it.
	SignInRateLimit string
	// TrustProxyHeaders lets X-Forwarded-For/X-Real-IP name the client.
	TrustProxyHeaders bool
	// MetricsPath mounts the prometheus handler. Empty disables it.
	MetricsPath string
}

type Server struct {
	httpServer *http.Server
}

func New(cfg config.HTTPConfig, deps Deps) (*Server, error) {
	handler, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

// NewHandler builds the full middleware chain around the router.
func NewHandler(deps Deps) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	h := &handlers{deps: deps}

	r := mux.NewRouter()
	r.Use(h.metricsMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.readyz).Methods(http.MethodGet)
	r.HandleFunc("/v1/info", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": "hrportal-bff",
			"version": "0.1.0",
		})
	}).Methods(http.MethodGet)
	if deps.MetricsPath != "" && deps.Metrics != nil {
		r.Handle(deps.MetricsPath, promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	if err := h.registerAuthRoutes(r); err != nil {
		return nil, err
	}
	h.registerHRRoutes(r.PathPrefix("/v1/hr").Subrouter())
	h.registerManagerRoutes(r.PathPrefix("/v1/manager").Subrouter())
	h.registerEmployeeRoutes(r.PathPrefix("/v1/employee").Subrouter())
	registerFrontendHandlers(r, deps.FrontendDistDir)

	var handler http.Handler = r
	if len(deps.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         600,
		}).Handler(handler)
	}
	return loggingMiddleware(deps.Logger, handler), nil
}

type handlers struct {
	deps Deps
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.deps.Ready(ctx); err != nil {
			h.deps.Logger.WithError(err).Warn("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeScreen renders a screen view, or maps the screen error onto a status.
// Validation failures still carry the view so the form can re-render.
func writeScreen(w http.ResponseWriter, view any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, view)
		return
	}
	var verrs screens.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		msg := "validation failed"
		if m, ok := verrs["_"]; ok {
			msg = m
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  msg,
			"fields": verrs,
			"view":   view,
		})
	case errors.Is(err, screens.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, screens.ErrNotEditing):
		writeError(w, http.StatusConflict, "item is not being edited")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"indus/hrportal/internal/auth"
)

func (h *handlers) registerAuthRoutes(r *mux.Router) error {
	limit, err := signInLimiter(h.deps.SignInRateLimit, h.deps.TrustProxyHeaders)
	if err != nil {
		return err
	}
	r.Handle("/v1/auth/signin", limit(http.HandlerFunc(h.signIn))).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/me", h.me).Methods(http.MethodGet)
	r.HandleFunc("/v1/auth/logout", h.logout).Methods(http.MethodPost)
	return nil
}

func (h *handlers) signIn(w http.ResponseWriter, r *http.Request) {
	if h.deps.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	// A token already held by the browser is replaced by the new session.
	replace, _ := extractBearerToken(r.Header.Get("Authorization"))

	res, err := h.deps.Auth.SignIn(r.Context(), req.Username, req.Password, replace)
	attempt := auth.Session{Profile: auth.Profile{Username: req.Username}}
	if err != nil {
		var se *auth.SignInError
		status := http.StatusInternalServerError
		body := map[string]any{"error": "sign-in failed"}
		if errors.As(err, &se) {
			body["error"] = se.Error()
			body["fields"] = se.Fields
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				status = http.StatusUnauthorized
			case errors.Is(err, auth.ErrSignInFailed):
				status = http.StatusBadGateway
			default:
				status = http.StatusBadRequest
			}
		}
		h.auditReq(r, attempt, "auth.signin", "", "failed", err.Error())
		writeJSON(w, status, body)
		return
	}

	s := res.Session
	h.auditReq(r, s, "auth.signin", "", "success", "")
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      s.Token,
		"session_id": s.ID,
		"role":       s.Role,
		"profile":    s.Profile,
		"redirect":   res.Redirect,
		"expires_at": s.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r, h.deps.Auth, "")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": session.ID,
		"role":       session.Role,
		"profile":    session.Profile,
		"redirect":   session.Role.Dashboard(),
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if h.deps.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
		return
	}
	token, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
		return
	}
	session, _ := h.deps.Auth.ValidateToken(token)
	if err := h.deps.Auth.Logout(token); err != nil {
		h.auditReq(r, session, "auth.logout", "", "failed", "invalid token")
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	h.auditReq(r, session, "auth.logout", "", "success", "")
	w.WriteHeader(http.StatusNoContent)
}

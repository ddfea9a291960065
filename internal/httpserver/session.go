package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"indus/hrportal/internal/audit"
	"indus/hrportal/internal/auth"
	"indus/hrportal/internal/screens"
)

type sessionKey struct{}

func withSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFrom(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok
}

func requireSession(w http.ResponseWriter, r *http.Request, authSvc AuthService, requiredRole auth.Role) (auth.Session, bool) {
	if authSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
		return auth.Session{}, false
	}
	token, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
		return auth.Session{}, false
	}

	session, err := authSvc.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return auth.Session{}, false
	}

	if requiredRole != "" && session.Role != requiredRole {
		writeError(w, http.StatusForbidden, "forbidden")
		return auth.Session{}, false
	}

	return session, true
}

// roleGate admits only sessions holding role and stores the session in the
// request context.
func (h *handlers) roleGate(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := requireSession(w, r, h.deps.Auth, role)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

type screenFunc func(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace)

// screen resolves the gated session's workspace for fn.
func (h *handlers) screen(fn screenFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing session")
			return
		}
		if h.deps.Workspaces == nil {
			writeError(w, http.StatusServiceUnavailable, "screens unavailable")
			return
		}
		ws := h.deps.Workspaces.Get(sess)
		// A logout between the gate and Get would leave ws orphaned.
		if _, err := h.deps.Auth.ValidateToken(sess.Token); err != nil {
			h.deps.Workspaces.Drop(sess.ID)
			writeError(w, http.StatusUnauthorized, "session ended")
			return
		}
		fn(w, r, sess, ws)
	}
}

func extractBearerToken(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func (h *handlers) auditReq(r *http.Request, sess auth.Session, action, target, outcome, detail string) {
	if h.deps.Audit == nil {
		return
	}
	actor := sess.Profile.Username
	err := h.deps.Audit.Record(audit.Event{
		Actor:     actor,
		Role:      string(sess.Role),
		Action:    action,
		Target:    target,
		Outcome:   outcome,
		SessionID: sess.ID,
		RequestID: requestIDFromContext(r.Context()),
		IP:        clientIP(r, h.deps.TrustProxyHeaders),
		Detail:    strings.TrimSpace(detail),
	})
	if err != nil {
		h.deps.Logger.WithError(err).WithField("action", action).Warn("audit write failed")
	}
}

// outcome reads a mutation's result from the error and the banner error it
// left behind.
func outcome(err error, bannerErr string) (string, string) {
	if err != nil {
		return "rejected", err.Error()
	}
	if bannerErr != "" {
		return "failed", bannerErr
	}
	return "success", ""
}

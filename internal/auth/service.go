package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/hrapi"
	"indus/hrportal/internal/observability"
)

var (
	ErrValidation         = errors.New("sign-in validation failed")
	ErrUnknownMarker      = errors.New("username carries no role marker")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSignInFailed       = errors.New("sign-in failed")
	ErrInvalidToken       = errors.New("invalid token")
)

// Authenticator is the remote side of sign-in.
type Authenticator interface {
	SignIn(ctx context.Context, ep hrapi.SignInEndpoint, username, password string) (hrapi.Person, error)
}

// SignInError carries per-field messages for the sign-in form.
type SignInError struct {
	Fields map[string]string
	Err    error
}

func (e *SignInError) Error() string {
	if msg, ok := e.Fields["username"]; ok {
		return msg
	}
	if msg, ok := e.Fields["password"]; ok {
		return msg
	}
	return e.Err.Error()
}

func (e *SignInError) Unwrap() error { return e.Err }

type Service struct {
	authn        Authenticator
	ttl          time.Duration
	nowFunc      func() time.Time
	sessionStore SessionStore
	onEnd        func(Session)
	metrics      *observability.Metrics
	log          *logrus.Entry

	sessMu   sync.RWMutex
	sessions map[string]Session
}

type ServiceConfig struct {
	SessionTTL   time.Duration
	SessionStore SessionStore
	// OnSessionEnd runs after a session is logged out, replaced or expired.
	OnSessionEnd func(Session)
	Metrics      *observability.Metrics
	Logger       *logrus.Entry
}

func NewService(authn Authenticator, cfg ServiceConfig) (*Service, error) {
	if authn == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be > 0")
	}
	store := cfg.SessionStore
	if store == nil {
		store = NewInMemorySessionStore()
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Service{
		authn:        authn,
		ttl:          cfg.SessionTTL,
		nowFunc:      time.Now,
		sessionStore: store,
		onEnd:        cfg.OnSessionEnd,
		metrics:      cfg.Metrics,
		log:          log,
		sessions:     make(map[string]Session),
	}, nil
}

// SignIn validates the form, picks the role endpoint from the username
// marker, authenticates remotely and opens a session. replaceToken, when it
// names a live session, is ended in favour of the new one.
func (s *Service) SignIn(ctx context.Context, username, password, replaceToken string) (SignInResult, error) {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "Username is required"
	}
	if password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return SignInResult{}, &SignInError{Fields: fields, Err: ErrValidation}
	}

	route, ok := ResolveMarker(username)
	if !ok {
		s.countSignIn("unknown", "invalid_username")
		return SignInResult{}, &SignInError{
			Fields: map[string]string{"username": "Invalid username"},
			Err:    ErrUnknownMarker,
		}
	}

	person, err := s.authn.SignIn(ctx, route.Endpoint, username, password)
	if err != nil {
		if hrapi.IsStatus(err, http.StatusUnauthorized) {
			s.countSignIn(string(route.Role), "unauthorized")
			return SignInResult{}, &SignInError{
				Fields: map[string]string{"username": "Invalid username or password"},
				Err:    ErrInvalidCredentials,
			}
		}
		s.countSignIn(string(route.Role), "failed")
		s.log.WithError(err).WithField("role", route.Role).Error("sign-in failed")
		msg := "Unknown error"
		var se *hrapi.StatusError
		if errors.As(err, &se) && se.Message != "" {
			msg = se.Message
		}
		return SignInResult{}, &SignInError{
			Fields: map[string]string{"username": "Sign-in failed: " + msg},
			Err:    fmt.Errorf("%w: %v", ErrSignInFailed, err),
		}
	}

	role := route.Role
	if serverRole, ok := ParseRole(person.Role); ok {
		role = serverRole
	}

	token, err := generateToken(32)
	if err != nil {
		return SignInResult{}, fmt.Errorf("generate token: %w", err)
	}

	now := s.nowFunc()
	session := Session{
		ID:    uuid.NewString(),
		Token: token,
		Role:  role,
		Profile: Profile{
			ID:        person.ID,
			Name:      person.Name,
			Email:     person.Email,
			Phone:     person.Phone,
			Username:  firstNonEmpty(person.Username, username),
			Role:      role,
			ManagerID: person.ManagerID(),
			HRID:      person.HRID(),
		},
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	var replaced *Session
	s.sessMu.Lock()
	if replaceToken != "" {
		if old, ok := s.sessions[replaceToken]; ok {
			replaced = &old
			delete(s.sessions, replaceToken)
		}
	}
	s.sessions[token] = session
	if err := s.persistSessionsLocked(); err != nil {
		delete(s.sessions, token)
		if replaced != nil {
			s.sessions[replaceToken] = *replaced
		}
		s.sessMu.Unlock()
		return SignInResult{}, err
	}
	active := len(s.sessions)
	s.sessMu.Unlock()

	if replaced != nil {
		s.ended(*replaced)
	}
	s.setActive(active)
	s.countSignIn(string(role), "success")
	s.log.WithFields(logrus.Fields{"role": role, "session_id": session.ID}).Info("signed in")

	return SignInResult{Session: session, Redirect: role.Dashboard()}, nil
}

func (s *Service) ValidateToken(token string) (Session, error) {
	s.sessMu.RLock()
	session, ok := s.sessions[token]
	s.sessMu.RUnlock()
	if !ok {
		return Session{}, ErrInvalidToken
	}

	if s.nowFunc().After(session.ExpiresAt) {
		s.sessMu.Lock()
		delete(s.sessions, token)
		_ = s.persistSessionsLocked()
		active := len(s.sessions)
		s.sessMu.Unlock()
		s.setActive(active)
		s.ended(session)
		return Session{}, ErrInvalidToken
	}

	return session, nil
}

func (s *Service) Logout(token string) error {
	s.sessMu.Lock()
	session, ok := s.sessions[token]
	if !ok {
		s.sessMu.Unlock()
		return ErrInvalidToken
	}
	delete(s.sessions, token)
	if err := s.persistSessionsLocked(); err != nil {
		s.sessMu.Unlock()
		return err
	}
	active := len(s.sessions)
	s.sessMu.Unlock()

	s.setActive(active)
	s.ended(session)
	return nil
}

// PurgeExpired drops every expired session and reports how many went.
func (s *Service) PurgeExpired() int {
	now := s.nowFunc()

	s.sessMu.Lock()
	var expired []Session
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			expired = append(expired, sess)
			delete(s.sessions, token)
		}
	}
	if len(expired) > 0 {
		_ = s.persistSessionsLocked()
	}
	active := len(s.sessions)
	s.sessMu.Unlock()

	s.setActive(active)
	for _, sess := range expired {
		s.ended(sess)
	}
	return len(expired)
}

func (s *Service) LoadSessionState() error {
	state, err := s.sessionStore.Load()
	if err != nil {
		return fmt.Errorf("load session state: %w", err)
	}
	if state == nil {
		state = make(map[string]Session)
	}
	s.sessMu.Lock()
	s.sessions = state
	active := len(state)
	s.sessMu.Unlock()
	s.setActive(active)
	return nil
}

func (s *Service) persistSessionsLocked() error {
	if err := s.sessionStore.Save(s.sessions); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}

func (s *Service) ended(sess Session) {
	if s.onEnd != nil {
		s.onEnd(sess)
	}
}

func (s *Service) countSignIn(role, outcome string) {
	if s.metrics != nil {
		s.metrics.SignIns.WithLabelValues(role, outcome).Inc()
	}
}

func (s *Service) setActive(n int) {
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(n))
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func generateToken(n int) (string, error) {
	if n < 16 {
		return "", fmt.Errorf("token length too short")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

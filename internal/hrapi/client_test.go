package hrapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indus/hrportal/internal/observability"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
	ReqID  string
}

type callLog struct {
	mu    sync.Mutex
	calls []recorded
}

func (l *callLog) add(r recorded) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, r)
}

func (l *callLog) all() []recorded {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recorded(nil), l.calls...)
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *callLog, *observability.Metrics) {
	t.Helper()
	log := &callLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		log.add(recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(b),
			ReqID:  r.Header.Get(requestIDHeader),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	m := observability.NewMetrics()
	c, err := New(Config{BaseURL: srv.URL, Metrics: m})
	require.NoError(t, err)
	return c, log, m
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:8080"})
	require.Error(t, err)
}

func TestListUsersDecodesPeople(t *testing.T) {
	c, calls, m := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 7, "name": "Ana", "email": "ana@x.io", "username": "ana@user", "role": "Employee", "hr": map[string]any{"id": 1}, "manager": map[string]any{"id": 2}},
		})
	})

	people, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, int64(7), people[0].ID)
	assert.Equal(t, int64(1), people[0].HRID())
	assert.Equal(t, int64(2), people[0].ManagerID())

	require.Len(t, calls.all(), 1)
	assert.Equal(t, "GET", calls.all()[0].Method)
	assert.Equal(t, "/user/all", calls.all()[0].Path)
	assert.NotEmpty(t, calls.all()[0].ReqID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCalls.WithLabelValues("user.all", "ok")))
}

func TestEndpointPaths(t *testing.T) {
	c, calls, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	_, err := c.ListManagers(ctx)
	require.NoError(t, err)
	_, err = c.ListUsersByManager(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, c.AddUser(ctx, PersonInput{Name: "a"}, 1, 2))
	require.NoError(t, c.AddManager(ctx, PersonInput{Name: "b"}, 1))
	require.NoError(t, c.AddUserDetails(ctx, UserDetails{Name: "c", HR: Ref{ID: 1}, Manager: Ref{ID: 2}}))
	require.NoError(t, c.EditUser(ctx, 4, PersonInput{Name: "d"}))
	require.NoError(t, c.EditManager(ctx, 5, PersonInput{Name: "e"}))
	require.NoError(t, c.DeleteUser(ctx, 6))
	require.NoError(t, c.DeleteManager(ctx, 7))
	_, err = c.ListTasks(ctx, 8)
	require.NoError(t, err)
	require.NoError(t, c.AddTask(ctx, 9, TaskInput{TaskName: "report", Deadline: "2026-10-20"}))
	require.NoError(t, c.CompleteTask(ctx, 10))
	_, err = c.ListLeaveRequests(ctx, LeaveScopeHR)
	require.NoError(t, err)
	_, err = c.ListLeaveRequests(ctx, LeaveScopeManager)
	require.NoError(t, err)
	require.NoError(t, c.ApproveLeave(ctx, LeaveScopeHR, 11))
	require.NoError(t, c.DenyLeave(ctx, LeaveScopeManager, 12))

	want := []struct{ method, path, query string }{
		{"GET", "/manager/all", ""},
		{"GET", "/user/byManager/3", ""},
		{"POST", "/user/add", "hr_id=1&manager_id=2"},
		{"POST", "/manager/add", "hr_id=1"},
		{"POST", "/userDetails/add", ""},
		{"PUT", "/user/edit/4", ""},
		{"PUT", "/manager/edit/5", ""},
		{"DELETE", "/user/delete/6", ""},
		{"DELETE", "/manager/delete/7", ""},
		{"GET", "/tasks/get/8", ""},
		{"POST", "/tasks/add", "user=9"},
		{"PATCH", "/tasks/done/10", ""},
		{"GET", "/leave/apply/hr/getAll", ""},
		{"GET", "/leave/apply/manager/getAll", ""},
		{"PATCH", "/leave/hr/approve/11", ""},
		{"PATCH", "/leave/manager/deny/12", ""},
	}
	require.Len(t, calls.all(), len(want))
	for i, w := range want {
		got := calls.all()[i]
		assert.Equal(t, w.method, got.Method, "call %d", i)
		assert.Equal(t, w.path, got.Path, "call %d", i)
		assert.Equal(t, w.query, got.Query, "call %d", i)
	}
	assert.JSONEq(t, `{"taskname":"report","deadline":"2026-10-20"}`, calls.all()[10].Body)
	assert.JSONEq(t, `{"name":"c","email":"","phone":"","username":"","role":"","hr":{"id":1},"manager":{"id":2}}`, calls.all()[4].Body)
}

func TestAddUserDetailsPasswordOnlyWhenSet(t *testing.T) {
	c, calls, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()
	require.NoError(t, c.AddUserDetails(ctx, UserDetails{Name: "Ana", Username: "ana@user"}))
	require.NoError(t, c.AddUserDetails(ctx, UserDetails{Name: "Ana", Username: "ana@user", Password: "newpass"}))

	var unchanged, changed map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls.all()[0].Body), &unchanged))
	require.NoError(t, json.Unmarshal([]byte(calls.all()[1].Body), &changed))
	assert.NotContains(t, unchanged, "password")
	assert.Equal(t, "newpass", changed["password"])
}

func TestAddUserOmitsZeroIDs(t *testing.T) {
	c, calls, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	require.NoError(t, c.AddUser(context.Background(), PersonInput{Name: "a"}, 0, 0))
	assert.Equal(t, "", calls.all()[0].Query)
}

func TestSignInSendsCredentialsAsQuery(t *testing.T) {
	c, calls, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "Hana", "username": "hana@admin", "role": "HR"})
	})

	p, err := c.SignIn(context.Background(), HRSignIn, "hana@admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Hana", p.Name)
	assert.Equal(t, "/hr/signIn", calls.all()[0].Path)
	assert.Equal(t, "password=pw&username=hana%40admin", calls.all()[0].Query)
	assert.Empty(t, calls.all()[0].Body)
}

func TestSignInRejectsUnknownEndpoint(t *testing.T) {
	c, calls, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {})
	_, err := c.SignIn(context.Background(), SignInEndpoint("/root/login"), "u", "p")
	require.Error(t, err)
	assert.Empty(t, calls.all())
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	c, _, m := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
	})

	_, err := c.SignIn(context.Background(), ManagerLogin, "x@lead", "nope")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "bad credentials", Message(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCalls.WithLabelValues("signin/manager/login", "status_401")))
}

func TestPlainTextErrorBody(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})
	err := c.DeleteUser(context.Background(), 1)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "boom", se.Message)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url})
	require.NoError(t, err)
	_, err = c.ListUsers(context.Background())
	require.Error(t, err)
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}

func TestInvalidLeaveScope(t *testing.T) {
	c, calls, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {})
	require.Error(t, c.ApproveLeave(context.Background(), LeaveScope("ceo"), 1))
	_, err := c.ListLeaveRequests(context.Background(), LeaveScope(""))
	require.Error(t, err)
	assert.Empty(t, calls.all())
}

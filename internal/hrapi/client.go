package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/observability"
)

const requestIDHeader = "X-Request-Id"

// StatusError is returned for any non-2xx answer from the HR API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hr api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("hr api: status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err carries the given HTTP status from the HR API.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Message extracts the server-provided message from err, or its text.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *observability.Metrics
	Logger     *logrus.Entry
}

// Client talks to the remote HR API. It never retries: a failed call is
// reported once to the caller.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	metrics    *observability.Metrics
	log        *logrus.Entry
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid hr api base url: %q", raw)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		log:        log,
	}, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]Person, error) {
	var out []Person
	if err := c.doJSON(ctx, "user.all", http.MethodGet, "/user/all", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListManagers(ctx context.Context) ([]Person, error) {
	var out []Person
	if err := c.doJSON(ctx, "manager.all", http.MethodGet, "/manager/all", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUsersByManager(ctx context.Context, managerID int64) ([]Person, error) {
	var out []Person
	if err := c.doJSON(ctx, "user.byManager", http.MethodGet, "/user/byManager/"+idPath(managerID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddUser creates an employee linked to an HR and a manager. Zero ids are
// omitted from the query.
func (c *Client) AddUser(ctx context.Context, in PersonInput, hrID, managerID int64) error {
	q := url.Values{}
	setID(q, "hr_id", hrID)
	setID(q, "manager_id", managerID)
	return c.doJSON(ctx, "user.add", http.MethodPost, "/user/add", q, in, nil)
}

func (c *Client) AddManager(ctx context.Context, in PersonInput, hrID int64) error {
	q := url.Values{}
	setID(q, "hr_id", hrID)
	return c.doJSON(ctx, "manager.add", http.MethodPost, "/manager/add", q, in, nil)
}

func (c *Client) AddUserDetails(ctx context.Context, in UserDetails) error {
	return c.doJSON(ctx, "userDetails.add", http.MethodPost, "/userDetails/add", nil, in, nil)
}

func (c *Client) EditUser(ctx context.Context, id int64, in PersonInput) error {
	return c.doJSON(ctx, "user.edit", http.MethodPut, "/user/edit/"+idPath(id), nil, in, nil)
}

func (c *Client) EditManager(ctx context.Context, id int64, in PersonInput) error {
	return c.doJSON(ctx, "manager.edit", http.MethodPut, "/manager/edit/"+idPath(id), nil, in, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "user.delete", http.MethodDelete, "/user/delete/"+idPath(id), nil, nil, nil)
}

func (c *Client) DeleteManager(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "manager.delete", http.MethodDelete, "/manager/delete/"+idPath(id), nil, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context, userID int64) ([]Task, error) {
	var out []Task
	if err := c.doJSON(ctx, "tasks.get", http.MethodGet, "/tasks/get/"+idPath(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddTask(ctx context.Context, userID int64, in TaskInput) error {
	q := url.Values{}
	q.Set("user", idPath(userID))
	return c.doJSON(ctx, "tasks.add", http.MethodPost, "/tasks/add", q, in, nil)
}

func (c *Client) CompleteTask(ctx context.Context, taskID int64) error {
	return c.doJSON(ctx, "tasks.done", http.MethodPatch, "/tasks/done/"+idPath(taskID), nil, nil, nil)
}

func (c *Client) ListLeaveRequests(ctx context.Context, scope LeaveScope) ([]LeaveRequest, error) {
	if !scope.Valid() {
		return nil, errors.Errorf("invalid leave scope %q", scope)
	}
	var out []LeaveRequest
	path := "/leave/apply/" + string(scope) + "/getAll"
	if err := c.doJSON(ctx, "leave."+string(scope)+".getAll", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ApproveLeave(ctx context.Context, scope LeaveScope, id int64) error {
	return c.decideLeave(ctx, scope, "approve", id)
}

func (c *Client) DenyLeave(ctx context.Context, scope LeaveScope, id int64) error {
	return c.decideLeave(ctx, scope, "deny", id)
}

func (c *Client) decideLeave(ctx context.Context, scope LeaveScope, decision string, id int64) error {
	if !scope.Valid() {
		return errors.Errorf("invalid leave scope %q", scope)
	}
	path := "/leave/" + string(scope) + "/" + decision + "/" + idPath(id)
	return c.doJSON(ctx, "leave."+string(scope)+"."+decision, http.MethodPatch, path, nil, nil, nil)
}

// SignIn authenticates against one of the role endpoints. Credentials travel
// as query parameters, which is what the HR API accepts.
func (c *Client) SignIn(ctx context.Context, ep SignInEndpoint, username, password string) (Person, error) {
	if !ep.Valid() {
		return Person{}, errors.Errorf("invalid sign-in endpoint %q", ep)
	}
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)

	var out Person
	if err := c.doJSON(ctx, "signin"+string(ep), http.MethodPost, string(ep), q, nil, &out); err != nil {
		return Person{}, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, endpoint, method, path string, query url.Values, reqBody, out any) (err error) {
	start := time.Now()
	defer func() { c.observe(endpoint, start, err) }()

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return errors.Wrap(err, "json marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "http request")
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "http read")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "json unmarshal response")
	}
	return nil
}

func (c *Client) observe(endpoint string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var se *StatusError
		if errors.As(err, &se) {
			outcome = fmt.Sprintf("status_%d", se.StatusCode)
		}
		c.log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"outcome":  outcome,
		}).WithError(err).Warn("hr api call failed")
	}
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamCalls.WithLabelValues(endpoint, outcome).Inc()
	c.metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func errorMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return msg
}

func idPath(id int64) string {
	return fmt.Sprintf("%d", id)
}

func setID(q url.Values, key string, id int64) {
	if id > 0 {
		q.Set(key, idPath(id))
	}
}

// Package remote implements service.Backend against an HTTP/JSON /tasks
// resource collection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"tasklist/internal/logging"
	"tasklist/internal/service"
)

const (
	// APITimeout is the default timeout for a single request.
	APITimeout = 5 * time.Second

	// collectionPath is the resource collection under the base URL.
	collectionPath = "/tasks"

	// maxErrorBody bounds how much of an error response is read into messages.
	maxErrorBody = 512
)

// Client implements service.Backend over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	// Token, when set, is sent as a bearer token on every request.
	Token string

	// Timeout bounds each request. Zero means APITimeout.
	Timeout time.Duration

	// HTTPClient overrides the transport (for testing). Token is ignored when set.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// New creates a client for the service at baseURL.
func New(ctx context.Context, baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL: %s", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
		if opts.Token != "" {
			httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: opts.Token,
				TokenType:   "Bearer",
			}))
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// LoadAll fetches GET /tasks.
func (c *Client) LoadAll(ctx context.Context) ([]service.Task, error) {
	var records []record
	if err := c.do(ctx, "load tasks", http.MethodGet, collectionPath, nil, &records); err != nil {
		return nil, err
	}
	tasks := make([]service.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

// Create posts {title, completed:false} to /tasks.
func (c *Client) Create(ctx context.Context, title string) (service.Task, error) {
	body := createRequest{Title: title, Completed: false}
	var r record
	if err := c.do(ctx, "create task", http.MethodPost, collectionPath, body, &r); err != nil {
		return service.Task{}, err
	}
	return r.task(), nil
}

// Update puts the full record to /tasks/{id}.
func (c *Client) Update(ctx context.Context, task service.Task) (service.Task, error) {
	var r record
	err := c.do(ctx, "update task "+task.ID, http.MethodPut, taskPath(task.ID), fromTask(task), &r)
	if err != nil {
		return service.Task{}, err
	}
	// Some services answer PUT with an empty body.
	if r.ID == "" {
		return task, nil
	}
	return r.task(), nil
}

// Remove deletes /tasks/{id}.
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.do(ctx, "remove task "+id, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return collectionPath + "/" + url.PathEscape(id)
}

// do sends one JSON request and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return wrapError(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, method, resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 && method == http.MethodPut {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &service.Error{Kind: service.KindBadStatus, Op: op, Status: resp.StatusCode, Msg: "invalid response body", Err: err}
	}
	return nil
}

// statusError converts a non-2xx response into a service error.
// A 404 on an item path is NotFound, 401 and 403 are Auth, and everything
// else is BadStatus.
func statusError(op, method string, resp *http.Response) error {
	msg := fmt.Sprintf("server returned %s", resp.Status)
	if detail := readErrorDetail(resp.Body); detail != "" {
		msg += ": " + detail
	}

	kind := service.KindBadStatus
	switch {
	case resp.StatusCode == http.StatusNotFound && (method == http.MethodPut || method == http.MethodDelete):
		kind = service.KindNotFound
		msg = "not found"
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = service.KindAuth
	}
	return &service.Error{Kind: kind, Op: op, Status: resp.StatusCode, Msg: msg}
}

// readErrorDetail extracts {"error": "..."} or a short plain-text body.
func readErrorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		return payload.Message
	}
	text := strings.TrimSpace(string(data))
	if strings.ContainsAny(text, "<\n") {
		return ""
	}
	return text
}

// wrapError classifies transport failures as network errors.
func wrapError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &service.Error{Kind: service.KindNetwork, Op: op, Msg: "request timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &service.Error{Kind: service.KindNetwork, Op: op, Msg: "request cancelled", Err: err}
	}
	return &service.Error{Kind: service.KindNetwork, Op: op, Msg: "service unreachable", Err: err}
}

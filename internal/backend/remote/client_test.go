package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tasklist/internal/backend/remote"
	"tasklist/internal/service"
)

// recordedRequest captures what the fake server saw.
type recordedRequest struct {
	Method      string
	Path        string
	Body        string
	ContentType string
	RequestID   string
	Auth        string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Body:        string(body),
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-Id"),
			Auth:        r.Header.Get("Authorization"),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newClient(t *testing.T, baseURL string, opts remote.Options) *remote.Client {
	t.Helper()
	c, err := remote.New(context.Background(), baseURL, opts)
	if err != nil {
		t.Fatalf("remote.New: %v", err)
	}
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	if _, err := remote.New(context.Background(), "ftp://example.com", remote.Options{}); err == nil {
		t.Error("expected error for non-http base URL")
	}
}

func TestLoadAll(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":"a1","title":"Buy milk","completed":false},{"id":7,"title":"Walk dog","completed":true}]`)
	})
	c := newClient(t, srv.URL+"/", remote.Options{})

	tasks, err := c.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "a1" || tasks[0].Title != "Buy milk" {
		t.Errorf("unexpected first task %+v", tasks[0])
	}
	if tasks[1].ID != "7" || !tasks[1].Completed {
		t.Errorf("expected numeric id stringified, got %+v", tasks[1])
	}

	req := (*seen)[0]
	if req.Method != http.MethodGet || req.Path != "/tasks" {
		t.Errorf("expected GET /tasks, got %s %s", req.Method, req.Path)
	}
	if req.RequestID == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestCreate_SendsTitleAndCompletedFalse(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"srv-1","title":"Buy milk","completed":false}`)
	})
	c := newClient(t, srv.URL, remote.Options{})

	task, err := c.Create(context.Background(), "Buy milk")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID != "srv-1" {
		t.Errorf("expected server-assigned id, got %q", task.ID)
	}

	req := (*seen)[0]
	if req.Method != http.MethodPost || req.Path != "/tasks" {
		t.Errorf("expected POST /tasks, got %s %s", req.Method, req.Path)
	}
	if req.ContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", req.ContentType)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		t.Fatalf("invalid request body: %v", err)
	}
	if body["title"] != "Buy milk" || body["completed"] != false || len(body) != 2 {
		t.Errorf("unexpected body %v", body)
	}
}

func TestUpdate_PutsFullRecord(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(w, r.Body)
	})
	c := newClient(t, srv.URL, remote.Options{})

	in := service.Task{ID: "a b", Title: "Buy almond milk", Completed: true}
	got, err := c.Update(context.Background(), in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ID != in.ID || got.Title != in.Title || !got.Completed {
		t.Errorf("expected echoed record, got %+v", got)
	}
	req := (*seen)[0]
	if req.Method != http.MethodPut || req.Path != "/tasks/a b" {
		t.Errorf("expected PUT /tasks/a b, got %s %s", req.Method, req.Path)
	}
}

func TestUpdate_EmptyResponseBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newClient(t, srv.URL, remote.Options{})

	in := service.Task{ID: "x", Title: "Keep me", Completed: true}
	got, err := c.Update(context.Background(), in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != in {
		t.Errorf("expected input task back, got %+v", got)
	}
}

func TestRemove(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c := newClient(t, srv.URL, remote.Options{})

	if err := c.Remove(context.Background(), "42"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	req := (*seen)[0]
	if req.Method != http.MethodDelete || req.Path != "/tasks/42" {
		t.Errorf("expected DELETE /tasks/42, got %s %s", req.Method, req.Path)
	}
}

func TestErrors_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		call     func(c *remote.Client) error
		wantKind service.Kind
		wantMsg  string
	}{
		{
			name:   "load 503",
			status: http.StatusServiceUnavailable,
			body:   `{"error":"maintenance"}`,
			call: func(c *remote.Client) error {
				_, err := c.LoadAll(context.Background())
				return err
			},
			wantKind: service.KindBadStatus,
			wantMsg:  "load tasks: server returned 503 Service Unavailable: maintenance",
		},
		{
			name:   "create 400",
			status: http.StatusBadRequest,
			body:   `title required`,
			call: func(c *remote.Client) error {
				_, err := c.Create(context.Background(), "x")
				return err
			},
			wantKind: service.KindBadStatus,
			wantMsg:  "create task: server returned 400 Bad Request: title required",
		},
		{
			name:   "remove 404",
			status: http.StatusNotFound,
			call: func(c *remote.Client) error {
				return c.Remove(context.Background(), "9")
			},
			wantKind: service.KindNotFound,
			wantMsg:  "remove task 9: not found",
		},
		{
			name:   "update 404",
			status: http.StatusNotFound,
			call: func(c *remote.Client) error {
				_, err := c.Update(context.Background(), service.Task{ID: "9", Title: "x"})
				return err
			},
			wantKind: service.KindNotFound,
			wantMsg:  "update task 9: not found",
		},
		{
			name:   "load 401",
			status: http.StatusUnauthorized,
			body:   `{"error":"invalid token"}`,
			call: func(c *remote.Client) error {
				_, err := c.LoadAll(context.Background())
				return err
			},
			wantKind: service.KindAuth,
			wantMsg:  "load tasks: server returned 401 Unauthorized: invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			err := tt.call(newClient(t, srv.URL, remote.Options{}))

			if service.KindOf(err) != tt.wantKind {
				t.Fatalf("expected kind %v, got %v (%v)", tt.wantKind, service.KindOf(err), err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, err.Error())
			}
			var svcErr *service.Error
			if errors.As(err, &svcErr) && svcErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, svcErr.Status)
			}
		})
	}
}

func TestErrors_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>`)
	})
	_, err := newClient(t, srv.URL, remote.Options{}).LoadAll(context.Background())
	if service.KindOf(err) != service.KindBadStatus {
		t.Errorf("expected bad status for invalid body, got %v", err)
	}
}

func TestErrors_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url, remote.Options{}).LoadAll(context.Background())
	if service.KindOf(err) != service.KindNetwork {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestErrors_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := newClient(t, srv.URL, remote.Options{Timeout: 50 * time.Millisecond})
	_, err := c.LoadAll(context.Background())
	if service.KindOf(err) != service.KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if err.Error() != "load tasks: request timed out" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestBearerToken(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	c := newClient(t, srv.URL, remote.Options{Token: "secret"})

	if _, err := c.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if got := (*seen)[0].Auth; got != "Bearer secret" {
		t.Errorf("expected bearer token, got %q", got)
	}
}

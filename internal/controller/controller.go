// Package controller owns the in-memory task collection and the transient
// view state, and applies backend results to them.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"tasklist/internal/logging"
	"tasklist/internal/service"
)

// ErrBusy is returned by Add while another backend call is outstanding.
var ErrBusy = errors.New("busy: another operation is in progress")

// Controller is the task list controller. Operations are the only mutators
// of its state; each returns the resulting snapshot. Backend calls run
// without holding the lock, so overlapping calls apply in completion order.
type Controller struct {
	backend service.Backend
	logger  *slog.Logger

	mu   sync.Mutex
	st   state
	subs map[int]func(State)
	next int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New creates a controller over backend with an empty collection and the
// "all" filter.
func New(backend service.Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		logger:  logging.Discard(),
		st:      state{filter: service.FilterAll},
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.snapshot()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function unregisters it.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// update applies fn under the lock and publishes the resulting snapshot.
func (c *Controller) update(fn func(s *state)) State {
	c.mu.Lock()
	fn(&c.st)
	snap, subs := c.st.snapshot(), c.subscribers()
	c.mu.Unlock()

	publish(subs, snap)
	return snap
}

// subscribers copies the subscriber set. Callers hold c.mu.
func (c *Controller) subscribers() []func(State) {
	subs := make([]func(State), 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	return subs
}

func publish(subs []func(State), snap State) {
	for _, sub := range subs {
		sub(snap)
	}
}

// begin marks a backend call as outstanding.
func (c *Controller) begin() State {
	return c.update(func(s *state) { s.inflight++ })
}

// tryBegin is begin, unless a call is already outstanding.
func (c *Controller) tryBegin() (State, bool) {
	c.mu.Lock()
	if c.st.inflight > 0 {
		snap := c.st.snapshot()
		c.mu.Unlock()
		return snap, false
	}
	c.st.inflight++
	snap, subs := c.st.snapshot(), c.subscribers()
	c.mu.Unlock()

	publish(subs, snap)
	return snap, true
}

// fail ends a backend call with err as the error to show.
func (c *Controller) fail(op string, err error) (State, error) {
	c.logger.Debug("operation failed", "op", op, "kind", service.KindOf(err).String(), "error", err)
	return c.update(func(s *state) {
		s.inflight--
		s.lastErr = err
	}), err
}

// Initialize loads the collection. Only the first call does anything.
func (c *Controller) Initialize(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.st.initialized {
		snap := c.st.snapshot()
		c.mu.Unlock()
		return snap, nil
	}
	c.st.initialized = true
	c.mu.Unlock()

	c.begin()
	tasks, err := c.backend.LoadAll(ctx)
	if err != nil {
		return c.fail("initialize", err)
	}
	c.logger.Debug("tasks loaded", "count", len(tasks))
	return c.update(func(s *state) {
		s.inflight--
		s.tasks = tasks
	}), nil
}

// SetDraft replaces the add-input buffer.
func (c *Controller) SetDraft(text string) State {
	return c.update(func(s *state) { s.draft = text })
}

// SubmitDraft adds the task typed into the input buffer.
func (c *Controller) SubmitDraft(ctx context.Context) (State, error) {
	return c.Add(ctx, c.Snapshot().Draft)
}

// Add creates a task from raw. Blank input is ignored without a backend
// call. While any backend call is outstanding Add returns ErrBusy.
func (c *Controller) Add(ctx context.Context, raw string) (State, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return c.Snapshot(), nil
	}

	if snap, ok := c.tryBegin(); !ok {
		return snap, ErrBusy
	}
	task, err := c.backend.Create(ctx, title)
	if err != nil {
		return c.fail("add", err)
	}
	c.logger.Debug("task added", "id", task.ID)
	return c.update(func(s *state) {
		s.inflight--
		if i := s.indexOf(task.ID); i >= 0 {
			s.tasks[i] = task
		} else {
			s.tasks = append(s.tasks, task)
		}
		s.draft = ""
	}), nil
}

// ToggleCompletion flips a task's completed flag once the backend has
// confirmed it. Unknown ids are ignored.
func (c *Controller) ToggleCompletion(ctx context.Context, id string) (State, error) {
	c.mu.Lock()
	i := c.st.indexOf(id)
	if i < 0 {
		snap := c.st.snapshot()
		c.mu.Unlock()
		return snap, nil
	}
	task := c.st.tasks[i]
	c.mu.Unlock()

	task.Completed = !task.Completed

	c.begin()
	updated, err := c.backend.Update(ctx, task)
	if err != nil {
		return c.fail("toggle", err)
	}
	return c.update(func(s *state) {
		s.inflight--
		s.replace(updated)
	}), nil
}

// Remove deletes a task. The backend is asked even for ids not held in
// memory, so a stale id surfaces as a not-found error.
func (c *Controller) Remove(ctx context.Context, id string) (State, error) {
	c.begin()
	if err := c.backend.Remove(ctx, id); err != nil {
		return c.fail("remove", err)
	}
	c.logger.Debug("task removed", "id", id)
	return c.update(func(s *state) {
		s.inflight--
		if i := s.indexOf(id); i >= 0 {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		}
		if s.editing != nil && s.editing.ID == id {
			s.editing = nil
		}
	}), nil
}

// ClearCompleted removes every completed task, one backend call each, in
// order. It stops at the first failure; tasks removed before it stay removed.
func (c *Controller) ClearCompleted(ctx context.Context) (State, error) {
	var ids []string
	for _, t := range c.Snapshot().Tasks {
		if t.Completed {
			ids = append(ids, t.ID)
		}
	}

	snap := c.Snapshot()
	for _, id := range ids {
		var err error
		if snap, err = c.Remove(ctx, id); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// StartEdit opens an edit session, discarding any other unsaved one.
func (c *Controller) StartEdit(id, currentText string) State {
	return c.update(func(s *state) {
		s.editing = &Edit{ID: id, Text: currentText}
	})
}

// ChangeEditText updates the in-progress text. No-op without a session.
func (c *Controller) ChangeEditText(text string) State {
	return c.update(func(s *state) {
		if s.editing != nil {
			s.editing.Text = text
		}
	})
}

// CancelEdit closes the edit session without saving.
func (c *Controller) CancelEdit() State {
	return c.update(func(s *state) { s.editing = nil })
}

// SaveEdit persists the edit session's trimmed text as the task title.
// Blank text cancels the session without a backend call. The session is
// closed afterward whether or not the update succeeded.
func (c *Controller) SaveEdit(ctx context.Context) (State, error) {
	c.mu.Lock()
	session := c.st.editing
	if session == nil {
		snap := c.st.snapshot()
		c.mu.Unlock()
		return snap, nil
	}
	title := strings.TrimSpace(session.Text)
	i := c.st.indexOf(session.ID)
	if title == "" || i < 0 {
		c.mu.Unlock()
		return c.closeEdit(session), nil
	}
	task := c.st.tasks[i]
	c.mu.Unlock()

	task.Title = title

	c.begin()
	updated, err := c.backend.Update(ctx, task)
	if err != nil {
		c.fail("save edit", err)
		return c.closeEdit(session), err
	}
	return c.update(func(s *state) {
		s.inflight--
		s.replace(updated)
		if s.editing == session {
			s.editing = nil
		}
	}), nil
}

// closeEdit clears the edit session if it is still the given one.
func (c *Controller) closeEdit(session *Edit) State {
	return c.update(func(s *state) {
		if s.editing == session {
			s.editing = nil
		}
	})
}

// SetFilter changes the visible subset. Unknown filters are rejected.
func (c *Controller) SetFilter(f service.Filter) (State, error) {
	parsed, err := service.ParseFilter(string(f))
	if err != nil {
		return c.Snapshot(), err
	}
	return c.update(func(s *state) { s.filter = parsed }), nil
}

// DismissError clears the error on display.
func (c *Controller) DismissError() State {
	return c.update(func(s *state) { s.lastErr = nil })
}

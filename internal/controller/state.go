package controller

import "tasklist/internal/service"

// Edit is an in-progress title edit.
type Edit struct {
	ID   string
	Text string
}

// State is an immutable snapshot of the controller.
type State struct {
	Tasks     []service.Task
	Filter    service.Filter
	Editing   *Edit // nil when no edit session is active
	Draft     string
	Loading   bool
	LastError string // empty when there is no error to show

	// Err is the failure behind LastError, for kind checks.
	Err error
}

// Visible returns the tasks matching the current filter, in order.
func (s State) Visible() []service.Task {
	return s.Filter.Apply(s.Tasks)
}

// PendingCount returns the number of tasks not completed.
func (s State) PendingCount() int {
	return s.Count(service.FilterActive)
}

// CompletedCount returns the number of completed tasks.
func (s State) CompletedCount() int {
	return s.Count(service.FilterCompleted)
}

// Count returns how many tasks match f.
func (s State) Count(f service.Filter) int {
	n := 0
	for _, t := range s.Tasks {
		if f.Match(t) {
			n++
		}
	}
	return n
}

// Lookup finds a task by id.
func (s State) Lookup(id string) (service.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// IsEditing reports whether id has the active edit session.
func (s State) IsEditing(id string) bool {
	return s.Editing != nil && s.Editing.ID == id
}

// state is the mutable state guarded by Controller.mu.
type state struct {
	tasks       []service.Task
	filter      service.Filter
	editing     *Edit
	draft       string
	inflight    int
	lastErr     error
	initialized bool
}

func (s *state) snapshot() State {
	snap := State{
		Tasks:   append([]service.Task(nil), s.tasks...),
		Filter:  s.filter,
		Draft:   s.draft,
		Loading: s.inflight > 0,
		Err:     s.lastErr,
	}
	if snap.Tasks == nil {
		snap.Tasks = []service.Task{}
	}
	if s.editing != nil {
		e := *s.editing
		snap.Editing = &e
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

func (s *state) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// replace swaps in the record with the same id. Tasks removed while the
// call was outstanding stay removed.
func (s *state) replace(task service.Task) {
	if i := s.indexOf(task.ID); i >= 0 {
		s.tasks[i] = task
	}
}

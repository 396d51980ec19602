// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"tasklist/internal/service"
)

// Operation names reported to BeforeCall and counted by Calls.
const (
	OpLoadAll = "LoadAll"
	OpCreate  = "Create"
	OpUpdate  = "Update"
	OpRemove  = "Remove"
)

// FakeBackend is an in-memory implementation of service.Backend for testing.
// IDs are assigned sequentially as "task-1", "task-2", ...
type FakeBackend struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int
	calls  map[string]int

	// Error injection for testing
	LoadAllErr error
	CreateErr  error
	UpdateErr  error
	RemoveErr  error

	// BeforeCall, if set, runs at the start of every operation outside the
	// lock. Tests use it to hold a call open.
	BeforeCall func(op string)
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{calls: make(map[string]int)}
}

// AddTask seeds a task directly into storage.
func (f *FakeBackend) AddTask(id, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Completed: completed})
}

// Tasks returns a copy of the stored tasks.
func (f *FakeBackend) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result
}

// Calls returns how many times op was invoked.
func (f *FakeBackend) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of invocations of any operation.
func (f *FakeBackend) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FakeBackend) enter(op string) {
	f.mu.Lock()
	f.calls[op]++
	hook := f.BeforeCall
	f.mu.Unlock()
	if hook != nil {
		hook(op)
	}
}

// LoadAll implements service.Backend.
func (f *FakeBackend) LoadAll(ctx context.Context) ([]service.Task, error) {
	f.enter(OpLoadAll)
	if f.LoadAllErr != nil {
		return nil, f.LoadAllErr
	}
	return f.Tasks(), nil
}

// Create implements service.Backend.
func (f *FakeBackend) Create(ctx context.Context, title string) (service.Task, error) {
	f.enter(OpCreate)
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	task := service.Task{ID: fmt.Sprintf("task-%d", f.nextID), Title: title}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// Update implements service.Backend.
func (f *FakeBackend) Update(ctx context.Context, task service.Task) (service.Task, error) {
	f.enter(OpUpdate)
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == task.ID {
			f.tasks[i] = task
			return task, nil
		}
	}
	return service.Task{}, service.Errorf(service.KindNotFound, "update task "+task.ID, "not found")
}

// Remove implements service.Backend.
func (f *FakeBackend) Remove(ctx context.Context, id string) error {
	f.enter(OpRemove)
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.Errorf(service.KindNotFound, "remove task "+id, "not found")
}

// FakeLister is a FakeBackend that can also enumerate task lists.
type FakeLister struct {
	*FakeBackend
	Lists        []service.TaskList
	ListListsErr error
}

// ListLists implements service.ListLister.
func (f *FakeLister) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	return f.Lists, nil
}

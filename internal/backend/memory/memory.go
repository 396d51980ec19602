// Package memory implements service.Backend in process memory with
// server-style UUID identifiers.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasklist/internal/service"
)

// Backend is a thread-safe in-memory task store.
type Backend struct {
	mu    sync.RWMutex
	tasks []service.Task
	now   func() time.Time
	newID func() string
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (b *Backend) LoadAll(ctx context.Context) ([]service.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]service.Task, len(b.tasks))
	copy(result, b.tasks)
	return result, nil
}

func (b *Backend) Create(ctx context.Context, title string) (service.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	created := b.now().UTC()
	task := service.Task{
		ID:        b.newID(),
		Title:     title,
		CreatedAt: &created,
	}
	b.tasks = append(b.tasks, task)
	return task, nil
}

func (b *Backend) Update(ctx context.Context, task service.Task) (service.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.tasks {
		if t.ID == task.ID {
			if task.CreatedAt == nil {
				task.CreatedAt = t.CreatedAt
			}
			b.tasks[i] = task
			return task, nil
		}
	}
	return service.Task{}, service.Errorf(service.KindNotFound, "update task "+task.ID, "not found")
}

func (b *Backend) Remove(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.tasks {
		if t.ID == id {
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			return nil
		}
	}
	return service.Errorf(service.KindNotFound, "remove task "+id, "not found")
}

// Package service defines the backend-agnostic interface for task operations.
package service

import "time"

// Task represents a single task item.
type Task struct {
	ID        string
	Title     string
	Completed bool
	CreatedAt *time.Time // nil when the backend does not track it
}

// Same reports whether t and other refer to the same task.
func (t Task) Same(other Task) bool {
	return t.ID == other.ID
}

// TaskList represents a backend-side task list (Google backend only).
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}

// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Backend defines the persistence operations for a task collection.
// All storage goes through this interface; the controller never imports a
// concrete backend. Implementations hold no task state of their own.
type Backend interface {
	// LoadAll returns every stored task in storage order.
	LoadAll(ctx context.Context) ([]Task, error)

	// Create stores a new, not completed task with the given title and
	// returns it with its assigned ID. The title is already trimmed and
	// non-empty.
	Create(ctx context.Context, title string) (Task, error)

	// Update replaces the stored record with the same ID and returns the
	// record as persisted. Returns a KindNotFound error if the ID is unknown.
	Update(ctx context.Context, task Task) (Task, error)

	// Remove deletes the task with the given ID.
	// Returns a KindNotFound error if the ID is unknown.
	Remove(ctx context.Context, id string) error
}

// ListLister is implemented by backends that can enumerate task lists.
type ListLister interface {
	ListLists(ctx context.Context) ([]TaskList, error)
}

// Package local implements service.Backend over a key-value store holding
// the whole collection as one JSON array.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"tasklist/internal/kvstore"
	"tasklist/internal/logging"
	"tasklist/internal/service"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "todos"

// malformedMsg is reported when the stored collection cannot be decoded.
const malformedMsg = "could not load saved tasks"

// record is the stored shape of a task. Field names follow the original
// local format ("text", numeric id).
type record struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Backend implements service.Backend on a kvstore.Store. Mutations hold mu
// across the whole read-modify-write of the collection.
type Backend struct {
	mu     sync.Mutex
	store  kvstore.Store
	key    string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock sets the time source used for ids and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

// New creates a local backend storing the collection under key.
func New(store kvstore.Store, key string, opts ...Option) *Backend {
	if key == "" {
		key = DefaultKey
	}
	b := &Backend{
		store:  store,
		key:    key,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Close closes the underlying store.
func (b *Backend) Close() error {
	return b.store.Close()
}

// LoadAll returns the stored collection in storage order.
func (b *Backend) LoadAll(ctx context.Context) ([]service.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.read(ctx, "load tasks")
	if err != nil {
		return nil, err
	}
	tasks := make([]service.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

// Create appends a new task. Its id is the current time in milliseconds,
// bumped past the largest stored id if the clock has not moved on.
func (b *Backend) Create(ctx context.Context, title string) (service.Task, error) {
	const op = "create task"

	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.read(ctx, op)
	if service.KindOf(err) == service.KindMalformedStoredData {
		// The app continues with an empty collection; the next write replaces the bad data.
		records = nil
	} else if err != nil {
		return service.Task{}, err
	}

	now := b.now()
	id := now.UnixMilli()
	for _, r := range records {
		if r.ID >= id {
			id = r.ID + 1
		}
	}

	r := record{
		ID:        id,
		Text:      title,
		Completed: false,
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
	}
	records = append(records, r)
	if err := b.write(ctx, op, records); err != nil {
		return service.Task{}, err
	}

	b.logger.Debug("task created", "id", id, "key", b.key)
	return r.task(), nil
}

// Update replaces the record with task.ID.
func (b *Backend) Update(ctx context.Context, task service.Task) (service.Task, error) {
	op := "update task " + task.ID

	id, err := parseID(op, task.ID)
	if err != nil {
		return service.Task{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	records, err := b.read(ctx, op)
	if err != nil {
		return service.Task{}, err
	}

	for i, r := range records {
		if r.ID != id {
			continue
		}
		updated := fromTask(id, task)
		if updated.CreatedAt == "" {
			updated.CreatedAt = r.CreatedAt
		}
		records[i] = updated
		if err := b.write(ctx, op, records); err != nil {
			return service.Task{}, err
		}
		b.logger.Debug("task updated", "id", id, "completed", updated.Completed)
		return updated.task(), nil
	}
	return service.Task{}, service.Errorf(service.KindNotFound, op, "not found")
}

// Remove deletes the record with the given id.
func (b *Backend) Remove(ctx context.Context, idStr string) error {
	op := "remove task " + idStr

	id, err := parseID(op, idStr)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	records, err := b.read(ctx, op)
	if err != nil {
		return err
	}

	for i, r := range records {
		if r.ID == id {
			records = append(records[:i], records[i+1:]...)
			if err := b.write(ctx, op, records); err != nil {
				return err
			}
			b.logger.Debug("task removed", "id", id)
			return nil
		}
	}
	return service.Errorf(service.KindNotFound, op, "not found")
}

// read loads and decodes the collection. A missing key is an empty collection.
func (b *Backend) read(ctx context.Context, op string) ([]record, error) {
	data, err := b.store.Get(ctx, b.key)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, &service.Error{Kind: service.KindStorageUnavailable, Op: op, Err: err}
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		b.logger.Warn("stored tasks are malformed", "key", b.key, "error", err)
		return nil, &service.Error{Kind: service.KindMalformedStoredData, Op: op, Msg: malformedMsg, Err: err}
	}
	return records, nil
}

// write re-serializes the full collection back to the key.
func (b *Backend) write(ctx context.Context, op string, records []record) error {
	if records == nil {
		records = []record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := b.store.Set(ctx, b.key, data); err != nil {
		return &service.Error{Kind: service.KindStorageUnavailable, Op: op, Err: err}
	}
	return nil
}

func parseID(op, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Ids are always numeric here, so anything else cannot be stored.
		return 0, service.Errorf(service.KindNotFound, op, "not found")
	}
	return id, nil
}

func fromTask(id int64, t service.Task) record {
	r := record{ID: id, Text: t.Title, Completed: t.Completed}
	if t.CreatedAt != nil {
		r.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return r
}

func (r record) task() service.Task {
	t := service.Task{
		ID:        strconv.FormatInt(r.ID, 10),
		Title:     r.Text,
		Completed: r.Completed,
	}
	if r.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
			t.CreatedAt = &ts
		}
	}
	return t
}

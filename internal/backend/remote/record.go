package remote

import (
	"bytes"
	"encoding/json"
	"time"

	"tasklist/internal/service"
)

// flexID accepts both string and numeric JSON ids.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

// record is the wire shape of a task.
type record struct {
	ID        flexID     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type createRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func fromTask(t service.Task) record {
	return record{
		ID:        flexID(t.ID),
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
}

func (r record) task() service.Task {
	return service.Task{
		ID:        string(r.ID),
		Title:     r.Title,
		Completed: r.Completed,
		CreatedAt: r.CreatedAt,
	}
}

package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"tasklist/internal/controller"
	"tasklist/internal/service"
)

// TaskRef represents a parsed task reference: either a 1-based position in
// the unfiltered list, or a backend id given with --id.
type TaskRef struct {
	Num int    // 1-based task number, 0 when ID is set
	ID  string // backend id from --id
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference and returns the remaining args.
//
// Parsing rules:
//  1. If id is non-empty → id reference, args are returned unchanged
//  2. If first arg is all digits → numeric reference
//  3. No args → ErrTaskRefRequired
//  4. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string, id string) (TaskRef, []string, error) {
	if id != "" {
		return TaskRef{ID: id}, args, nil
	}
	if len(args) == 0 {
		return TaskRef{}, nil, ErrTaskRefRequired
	}

	first := args[0]
	if !isAllDigits(first) {
		return TaskRef{}, nil, fmt.Errorf("invalid task reference: %s", first)
	}
	num, err := strconv.Atoi(first)
	if err != nil {
		return TaskRef{}, nil, fmt.Errorf("invalid task reference: %s", first)
	}
	return TaskRef{Num: num}, args[1:], nil
}

// Resolve finds the referenced task in snap.
func (r TaskRef) Resolve(snap controller.State) (service.Task, error) {
	if r.ID != "" {
		task, ok := snap.Lookup(r.ID)
		if !ok {
			return service.Task{}, fmt.Errorf("task not found: %s", r.ID)
		}
		return task, nil
	}
	if r.Num < 1 || r.Num > len(snap.Tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", r.Num)
	}
	return snap.Tasks[r.Num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

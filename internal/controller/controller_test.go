package controller_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tasklist/internal/controller"
	"tasklist/internal/service"
	"tasklist/internal/testutil"
)

var errBoom = &service.Error{Kind: service.KindNetwork, Op: "call", Msg: "service unreachable"}

// newController returns an initialized controller over a fake backend
// seeded with the given tasks.
func newController(t *testing.T, seed ...service.Task) (*controller.Controller, *testutil.FakeBackend) {
	t.Helper()
	backend := testutil.NewFakeBackend()
	for _, task := range seed {
		backend.AddTask(task.ID, task.Title, task.Completed)
	}
	c := controller.New(backend)
	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c, backend
}

func TestInitialize_LoadsTasks(t *testing.T) {
	c, backend := newController(t,
		service.Task{ID: "a", Title: "Buy milk"},
		service.Task{ID: "b", Title: "Walk dog", Completed: true})

	snap := c.Snapshot()
	if len(snap.Tasks) != 2 || snap.Tasks[0].ID != "a" || snap.Tasks[1].ID != "b" {
		t.Errorf("expected tasks [a b], got %+v", snap.Tasks)
	}
	if snap.Loading {
		t.Error("expected loading=false after initialize")
	}
	if snap.Filter != service.FilterAll {
		t.Errorf("expected filter all, got %q", snap.Filter)
	}

	// Exactly once.
	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if n := backend.Calls(testutil.OpLoadAll); n != 1 {
		t.Errorf("expected 1 LoadAll call, got %d", n)
	}
}

func TestInitialize_Failure(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddTask("a", "ignored", false)
	backend.LoadAllErr = errBoom
	c := controller.New(backend)

	snap, err := c.Initialize(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if len(snap.Tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(snap.Tasks))
	}
	if snap.LastError != "call: service unreachable" {
		t.Errorf("unexpected LastError %q", snap.LastError)
	}
	if snap.Loading {
		t.Error("expected loading=false afterward")
	}
}

func TestAdd_TrimsAndAppends(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "first"})

	snap, err := c.Add(context.Background(), "  Buy milk  ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(snap.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snap.Tasks))
	}
	added := snap.Tasks[1]
	if added.Title != "Buy milk" || added.Completed {
		t.Errorf("unexpected added task %+v", added)
	}
	if got := backend.Tasks(); len(got) != 2 {
		t.Errorf("expected backend to hold 2 tasks, got %d", len(got))
	}
}

func TestAdd_BlankIsNoop(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		c, backend := newController(t)
		snap, err := c.Add(context.Background(), raw)
		if err != nil {
			t.Errorf("Add(%q): unexpected error %v", raw, err)
		}
		if len(snap.Tasks) != 0 {
			t.Errorf("Add(%q): expected no tasks", raw)
		}
		if n := backend.Calls(testutil.OpCreate); n != 0 {
			t.Errorf("Add(%q): expected no Create call, got %d", raw, n)
		}
	}
}

func TestAdd_Failure(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "first"})
	backend.CreateErr = errBoom
	c.SetDraft("Buy milk")

	snap, err := c.SubmitDraft(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected error, got %v", err)
	}
	if len(snap.Tasks) != 1 {
		t.Errorf("expected tasks unchanged, got %d", len(snap.Tasks))
	}
	if snap.LastError == "" {
		t.Error("expected LastError set")
	}
	if snap.Draft != "Buy milk" {
		t.Errorf("expected draft kept on failure, got %q", snap.Draft)
	}
}

func TestSubmitDraft_ClearsDraft(t *testing.T) {
	c, _ := newController(t)
	c.SetDraft("Buy milk")

	snap, err := c.SubmitDraft(context.Background())
	if err != nil {
		t.Fatalf("SubmitDraft: %v", err)
	}
	if snap.Draft != "" {
		t.Errorf("expected draft cleared, got %q", snap.Draft)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "Buy milk" {
		t.Errorf("unexpected tasks %+v", snap.Tasks)
	}
}

func TestAdd_BusyWhileCallOutstanding(t *testing.T) {
	c, backend := newController(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	backend.BeforeCall = func(op string) {
		if op == testutil.OpCreate {
			close(entered)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Add(context.Background(), "first")
		done <- err
	}()
	<-entered

	if !c.Snapshot().Loading {
		t.Error("expected loading=true while Create is outstanding")
	}
	backend.BeforeCall = nil
	snap, err := c.Add(context.Background(), "second")
	if !errors.Is(err, controller.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if snap.LastError != "" {
		t.Errorf("busy rejection should not set LastError, got %q", snap.LastError)
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Add: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first Add did not finish")
	}

	final := c.Snapshot()
	if final.Loading {
		t.Error("expected loading=false after completion")
	}
	if len(final.Tasks) != 1 || backend.Calls(testutil.OpCreate) != 1 {
		t.Errorf("expected exactly one task created, got %d tasks / %d calls",
			len(final.Tasks), backend.Calls(testutil.OpCreate))
	}
}

func TestToggleCompletion(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "Buy milk"})
	ctx := context.Background()

	snap, err := c.ToggleCompletion(ctx, "a")
	if err != nil {
		t.Fatalf("ToggleCompletion: %v", err)
	}
	if !snap.Tasks[0].Completed || snap.Tasks[0].Title != "Buy milk" {
		t.Errorf("expected completed with title unchanged, got %+v", snap.Tasks[0])
	}

	snap, _ = c.ToggleCompletion(ctx, "a")
	if snap.Tasks[0].Completed {
		t.Error("expected second toggle to restore completed=false")
	}
	if n := backend.Calls(testutil.OpUpdate); n != 2 {
		t.Errorf("expected 2 Update calls, got %d", n)
	}
}

func TestToggleCompletion_UnknownIDIsNoop(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "x"})

	if _, err := c.ToggleCompletion(context.Background(), "missing"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if n := backend.Calls(testutil.OpUpdate); n != 0 {
		t.Errorf("expected no Update call, got %d", n)
	}
}

func TestToggleCompletion_FailureKeepsState(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "x"})
	backend.UpdateErr = errBoom

	snap, err := c.ToggleCompletion(context.Background(), "a")
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected error, got %v", err)
	}
	if snap.Tasks[0].Completed {
		t.Error("expected no optimistic flip")
	}
	if snap.LastError == "" || snap.Loading {
		t.Errorf("expected error shown and loading cleared, got %+v", snap)
	}
}

func TestRemove(t *testing.T) {
	c, _ := newController(t,
		service.Task{ID: "a", Title: "x"},
		service.Task{ID: "b", Title: "y"})

	snap, err := c.Remove(context.Background(), "a")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := snap.Lookup("a"); ok {
		t.Error("expected a to be gone")
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != "b" {
		t.Errorf("unexpected tasks %+v", snap.Tasks)
	}
}

func TestRemove_NotFound(t *testing.T) {
	c, _ := newController(t, service.Task{ID: "a", Title: "x"})

	snap, err := c.Remove(context.Background(), "missing")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if service.KindOf(snap.Err) != service.KindNotFound {
		t.Errorf("expected not-found kind on state, got %v", snap.Err)
	}
	if len(snap.Tasks) != 1 {
		t.Errorf("expected tasks unchanged, got %d", len(snap.Tasks))
	}
}

func TestScenario_AddToggleFilter(t *testing.T) {
	c, _ := newController(t)
	ctx := context.Background()

	snap, err := c.Add(ctx, "Buy milk")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "Buy milk" || snap.Tasks[0].Completed {
		t.Fatalf("unexpected tasks %+v", snap.Tasks)
	}
	id := snap.Tasks[0].ID

	snap, _ = c.ToggleCompletion(ctx, id)
	if !snap.Tasks[0].Completed {
		t.Fatal("expected completed=true")
	}
	if snap.PendingCount() != 0 || snap.CompletedCount() != 1 {
		t.Errorf("expected counts 0/1, got %d/%d", snap.PendingCount(), snap.CompletedCount())
	}

	snap, _ = c.SetFilter(service.FilterActive)
	if len(snap.Visible()) != 0 {
		t.Errorf("expected no visible tasks under active, got %d", len(snap.Visible()))
	}

	snap, _ = c.SetFilter(service.FilterCompleted)
	if v := snap.Visible(); len(v) != 1 || v[0].ID != id {
		t.Errorf("expected the task under completed, got %+v", v)
	}
}

func TestScenario_EditSave(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "Buy milk"})
	ctx := context.Background()

	c.StartEdit("a", "Buy milk")
	if snap := c.ChangeEditText("Buy almond milk"); snap.Editing == nil || snap.Editing.Text != "Buy almond milk" {
		t.Fatalf("expected edit text updated, got %+v", snap.Editing)
	}
	if n := backend.TotalCalls(); n != 1 {
		t.Errorf("ChangeEditText must not call the backend, got %d calls", n)
	}

	snap, err := c.SaveEdit(ctx)
	if err != nil {
		t.Fatalf("SaveEdit: %v", err)
	}
	if snap.Tasks[0].Title != "Buy almond milk" {
		t.Errorf("expected new title, got %q", snap.Tasks[0].Title)
	}
	if snap.Editing != nil {
		t.Error("expected edit session cleared")
	}
}

func TestScenario_EditBlankCancels(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "x"})

	c.StartEdit("a", "x")
	c.ChangeEditText("   ")
	snap, err := c.SaveEdit(context.Background())
	if err != nil {
		t.Fatalf("SaveEdit: %v", err)
	}
	if n := backend.Calls(testutil.OpUpdate); n != 0 {
		t.Errorf("expected no Update call, got %d", n)
	}
	if snap.Tasks[0].Title != "x" || snap.Editing != nil || snap.LastError != "" {
		t.Errorf("expected unchanged task and cleared edit, got %+v", snap)
	}
}

func TestSaveEdit_FailureStillClearsSession(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "x"})
	backend.UpdateErr = errBoom

	c.StartEdit("a", "x")
	c.ChangeEditText("y")
	snap, err := c.SaveEdit(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected error, got %v", err)
	}
	if snap.Editing != nil {
		t.Error("expected edit session cleared after failure")
	}
	if snap.Tasks[0].Title != "x" || snap.LastError == "" {
		t.Errorf("expected title unchanged and error shown, got %+v", snap)
	}
}

func TestStartEdit_ReplacesSession(t *testing.T) {
	c, backend := newController(t,
		service.Task{ID: "a", Title: "x"},
		service.Task{ID: "b", Title: "y"})

	c.StartEdit("a", "x")
	c.ChangeEditText("unsaved")
	snap := c.StartEdit("b", "y")

	if !snap.IsEditing("b") || snap.IsEditing("a") || snap.Editing.Text != "y" {
		t.Errorf("expected session on b, got %+v", snap.Editing)
	}
	if snap.Tasks[0].Title != "x" || backend.Calls(testutil.OpUpdate) != 0 {
		t.Error("replaced session must not be saved")
	}
}

func TestCancelEditAndNoopSave(t *testing.T) {
	c, backend := newController(t, service.Task{ID: "a", Title: "x"})

	c.StartEdit("a", "x")
	c.ChangeEditText("y")
	if snap := c.CancelEdit(); snap.Editing != nil {
		t.Error("expected session cleared")
	}
	if _, err := c.SaveEdit(context.Background()); err != nil {
		t.Errorf("SaveEdit without session: %v", err)
	}
	if n := backend.Calls(testutil.OpUpdate); n != 0 {
		t.Errorf("expected no Update call, got %d", n)
	}
	if snap := c.ChangeEditText("z"); snap.Editing != nil {
		t.Error("ChangeEditText without session must not open one")
	}
}

func TestSetFilter_RejectsUnknown(t *testing.T) {
	c, _ := newController(t)
	c.SetFilter(service.FilterActive)

	snap, err := c.SetFilter("done")
	if service.KindOf(err) != service.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
	if snap.Filter != service.FilterActive {
		t.Errorf("expected filter unchanged, got %q", snap.Filter)
	}
}

func TestDismissError(t *testing.T) {
	c, _ := newController(t)
	c.Remove(context.Background(), "missing")

	if c.Snapshot().LastError == "" {
		t.Fatal("expected error to be set")
	}
	snap := c.DismissError()
	if snap.LastError != "" || snap.Err != nil {
		t.Errorf("expected error cleared, got %+v", snap)
	}
}

func TestClearCompleted(t *testing.T) {
	c, backend := newController(t,
		service.Task{ID: "a", Title: "x", Completed: true},
		service.Task{ID: "b", Title: "y"},
		service.Task{ID: "c", Title: "z", Completed: true})

	snap, err := c.ClearCompleted(context.Background())
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != "b" {
		t.Errorf("expected only b left, got %+v", snap.Tasks)
	}
	if n := backend.Calls(testutil.OpRemove); n != 2 {
		t.Errorf("expected 2 Remove calls, got %d", n)
	}
}

func TestClearCompleted_StopsAtFirstFailure(t *testing.T) {
	c, backend := newController(t,
		service.Task{ID: "a", Title: "x", Completed: true},
		service.Task{ID: "b", Title: "y", Completed: true})
	backend.RemoveErr = errBoom

	snap, err := c.ClearCompleted(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected error, got %v", err)
	}
	if len(snap.Tasks) != 2 || backend.Calls(testutil.OpRemove) != 1 {
		t.Errorf("expected to stop after first failure, got %d tasks / %d calls",
			len(snap.Tasks), backend.Calls(testutil.OpRemove))
	}
}

func TestSubscribe(t *testing.T) {
	c, _ := newController(t)

	var got []controller.State
	cancel := c.Subscribe(func(s controller.State) { got = append(got, s) })

	c.Add(context.Background(), "Buy milk")
	// begin (loading) + result
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if !got[0].Loading || got[1].Loading || len(got[1].Tasks) != 1 {
		t.Errorf("unexpected notifications %+v", got)
	}

	cancel()
	c.SetFilter(service.FilterActive)
	if len(got) != 2 {
		t.Errorf("expected no notifications after cancel, got %d", len(got))
	}
}

func TestSnapshot_IsIsolated(t *testing.T) {
	c, _ := newController(t, service.Task{ID: "a", Title: "x"})
	c.StartEdit("a", "x")

	snap := c.Snapshot()
	snap.Tasks[0].Title = "mutated"
	snap.Editing.Text = "mutated"

	again := c.Snapshot()
	if again.Tasks[0].Title != "x" || again.Editing.Text != "x" {
		t.Error("snapshots must not alias controller state")
	}
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It flips the completed flag, so
// running it on a completed task reopens it.
type DoneCmd struct {
	id string
}

// SetID sets the --id reference (for testing).
func (c *DoneCmd) SetID(id string) {
	c.id = id
}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle a task's completed state" }
func (c *DoneCmd) Usage() string      { return "tasklist done [--id <id>] <ref>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.id, "id", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, out, errOut io.Writer) int {
	ref, rest, code := parseRef(args, c.id, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(rest) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[0])
		return exitcode.UserError
	}

	ctl, snap, code := openController(ctx, cfg, svc, errOut)
	if ctl == nil {
		return code
	}

	task, err := ref.Resolve(snap)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	snap, err = ctl.ToggleCompletion(ctx, task.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		if updated, ok := snap.Lookup(task.ID); ok && updated.Completed {
			fmt.Fprintln(out, "ok: completed")
		} else {
			fmt.Fprintln(out, "ok: reopened")
		}
	}
	return exitcode.Success
}

// parseRef parses a task reference, printing any error.
func parseRef(args []string, id string, errOut io.Writer) (TaskRef, []string, int) {
	ref, rest, err := ParseTaskRef(args, id)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return TaskRef{}, nil, exitcode.UserError
	}
	return ref, rest, exitcode.Success
}

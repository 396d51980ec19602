package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	id string
}

// SetID sets the --id reference (for testing).
func (c *EditCmd) SetID(id string) {
	c.id = id
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"rename"} }
func (c *EditCmd) Synopsis() string   { return "Change a task's title" }
func (c *EditCmd) Usage() string      { return "tasklist edit [--id <id>] <ref> <title...>" }
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.id, "id", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, out, errOut io.Writer) int {
	ref, rest, code := parseRef(args, c.id, errOut)
	if code != exitcode.Success {
		return code
	}
	title := strings.Join(rest, " ")

	ctl, snap, code := openController(ctx, cfg, svc, errOut)
	if ctl == nil {
		return code
	}

	task, err := ref.Resolve(snap)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	ctl.StartEdit(task.ID, task.Title)
	ctl.ChangeEditText(title)
	if _, err := ctl.SaveEdit(ctx); err != nil {
		return reportError(errOut, err)
	}

	// Blank text closes the session without saving.
	if strings.TrimSpace(title) == "" {
		if !cfg.Quiet {
			fmt.Fprintln(out, "unchanged")
		}
		return exitcode.Success
	}

	printOK(cfg, out)
	return exitcode.Success
}

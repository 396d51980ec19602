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
	Register(&ClearCmd{})
}

// ClearCmd implements the clear command.
type ClearCmd struct{}

func (c *ClearCmd) Name() string       { return "clear" }
func (c *ClearCmd) Aliases() []string  { return nil }
func (c *ClearCmd) Synopsis() string   { return "Delete all completed tasks" }
func (c *ClearCmd) Usage() string      { return "tasklist clear" }
func (c *ClearCmd) NeedsBackend() bool { return true }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, out, errOut io.Writer) int {
	ctl, snap, code := openController(ctx, cfg, svc, errOut)
	if ctl == nil {
		return code
	}
	before := snap.CompletedCount()

	snap, err := ctl.ClearCompleted(ctx)
	if removed := before - snap.CompletedCount(); removed > 0 && !cfg.Quiet {
		fmt.Fprintf(out, "removed %d\n", removed)
	}
	if err != nil {
		return reportError(errOut, err)
	}

	if before == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no completed tasks")
	}
	return exitcode.Success
}

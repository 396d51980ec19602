package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/output"
	"tasklist/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasklist` (no args) and `tasklist list --filter <f>`.
type ListCmd struct {
	filter string
}

// SetFilter sets the filter name (for testing).
func (c *ListCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "tasklist list [--filter all|active|completed]" }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", string(service.FilterAll), "")
	fs.StringVar(&c.filter, "f", string(service.FilterAll), "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter := c.filter
	if filter == "" {
		filter = string(service.FilterAll)
	}
	// Validate before touching the backend.
	if _, err := service.ParseFilter(filter); err != nil {
		output.FormatError(errOut, err.Error())
		return exitcode.UserError
	}

	ctl, _, code := openController(ctx, cfg, svc, errOut)
	if ctl == nil {
		return code
	}

	snap, err := ctl.SetFilter(service.Filter(filter))
	if err != nil {
		return reportError(errOut, err)
	}

	if output.FormatTasks(out, snap) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, output.EmptyMessage(snap.Filter))
	}
	if !cfg.Quiet {
		output.FormatCounts(out, snap)
	}

	// Undecodable stored data was already reported.
	if snap.Err != nil {
		return exitcode.BackendError
	}
	return exitcode.Success
}

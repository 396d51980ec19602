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
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "Print all task lists (google backend)" }
func (c *ListsCmd) Usage() string      { return "tasklist lists [common flags]" }
func (c *ListsCmd) NeedsBackend() bool { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, out, errOut io.Writer) int {
	lister, ok := svc.(service.ListLister)
	if !ok {
		fmt.Fprintf(errOut, "error: backend %s has no task lists\n", cfg.Backend)
		return exitcode.UserError
	}

	lists, err := lister.ListLists(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	for _, list := range lists {
		output.FormatListName(out, list)
	}

	return exitcode.Success
}

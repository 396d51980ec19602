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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "tasklist help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	writeCommandList(out, DefaultRegistry)
	return exitcode.Success
}

// writeCommandList prints one line per registered command with its aliases.
func writeCommandList(w io.Writer, r *Registry) {
	fmt.Fprintln(w, "\nCommands:")
	for _, cmd := range r.All() {
		name := cmd.Name()
		if aliases := r.AliasesOf(name); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(w, "  %-20s %s\n", name, cmd.Synopsis())
	}
}

const helpText = `Usage:
  tasklist                                        List all tasks
  tasklist list [common flags] [--filter all|active|completed]
  tasklist add [common flags] <title...>
  tasklist done [common flags] [--id <id>] <ref>   Toggle completed
  tasklist edit [common flags] [--id <id>] <ref> <title...>
  tasklist rm [common flags] [--id <id>] <ref>
  tasklist clear [common flags]                   Delete completed tasks
  tasklist lists [common flags]                   Google task lists
  tasklist config [common flags]
  tasklist serve [common flags] [--addr <host:port>] [--store memory|local]
  tasklist login [common flags]
  tasklist logout [common flags]
  tasklist help
  tasklist version

A <ref> is the task number shown by list.

Common flags:
  --config <dir>                 Override config directory
  --backend local|remote|google  Override the configured backend
  --quiet                        Suppress informational output
  --debug                        Print debug logs to stderr
`

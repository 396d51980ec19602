package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/backend"
	"tasklist/internal/backend/local"
	"tasklist/internal/backend/memory"
	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/logging"
	"tasklist/internal/server"
	"tasklist/internal/service"
)

// Store names for serve --store.
const (
	storeMemory = "memory"
	storeLocal  = "local"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: it runs the HTTP task service the
// remote backend talks to.
type ServeCmd struct {
	addr  string
	store string
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Run the HTTP task service" }
func (c *ServeCmd) Usage() string      { return "tasklist serve [--addr <host:port>] [--store memory|local]" }
func (c *ServeCmd) NeedsBackend() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", ":8080", "")
	fs.StringVar(&c.store, "store", storeMemory, "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Backend, args []string, out, errOut io.Writer) int {
	logger := logging.New(cfg, errOut)

	var b service.Backend
	switch c.store {
	case storeMemory:
		b = memory.New()
	case storeLocal:
		store, err := backend.OpenStore(cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		lb := local.New(store, cfg.Local.Key, local.WithLogger(logger))
		defer lb.Close()
		b = lb
	default:
		fmt.Fprintf(errOut, "error: unknown store: %s\n", c.store)
		return exitcode.UserError
	}

	if err := server.New(b, logger).Run(ctx, c.addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

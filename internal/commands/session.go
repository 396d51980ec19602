package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/controller"
	"tasklist/internal/exitcode"
	"tasklist/internal/logging"
	"tasklist/internal/output"
	"tasklist/internal/service"
)

// openController creates a controller over svc and loads the collection.
// Undecodable stored data is reported and the session continues with an
// empty collection; any other load failure ends the command.
func openController(ctx context.Context, cfg *config.Config, svc service.Backend, errOut io.Writer) (*controller.Controller, controller.State, int) {
	ctl := controller.New(svc, controller.WithLogger(logging.New(cfg, errOut)))
	snap, err := ctl.Initialize(ctx)
	if err != nil {
		if service.KindOf(err) == service.KindMalformedStoredData {
			output.FormatError(errOut, err.Error())
			return ctl, snap, exitcode.Success
		}
		return nil, snap, reportError(errOut, err)
	}
	return ctl, snap, exitcode.Success
}

// reportError prints err and returns the matching exit code.
func reportError(errOut io.Writer, err error) int {
	switch service.KindOf(err) {
	case service.KindValidation, service.KindNotFound:
		output.FormatError(errOut, err.Error())
		return exitcode.UserError
	case service.KindAuth:
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	if errors.Is(err, controller.ErrBusy) {
		output.FormatError(errOut, err.Error())
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// printOK prints "ok" unless quiet.
func printOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"caretaker/internal/config"
	"caretaker/internal/exitcode"
	"caretaker/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "caretaker done <ref>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, svc, service.StatusDone, args, out, errOut)
}

// UndoCmd implements the undo command.
type UndoCmd struct{}

func (c *UndoCmd) Name() string       { return "undo" }
func (c *UndoCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string   { return "Mark a task pending again" }
func (c *UndoCmd) Usage() string      { return "caretaker undo <ref>" }
func (c *UndoCmd) NeedsBackend() bool { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, svc, service.StatusPending, args, out, errOut)
}

// runSetStatus is the shared implementation for done and undo.
func runSetStatus(ctx context.Context, cfg *config.Config, svc service.Service, status service.Status, args []string, out, errOut io.Writer) int {
	task, rest, code := lookupTask(ctx, cfg, svc, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(rest) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[0])
		return exitcode.UserError
	}

	if task.Status == status {
		cfg.Log.Debug().Str("id", task.ID).Stringer("status", status).Msg("status unchanged")
		printOK(cfg, out)
		return exitcode.Success
	}

	if _, err := svc.UpdateTask(ctx, task.WithStatus(status)); err != nil {
		return backendError(errOut, err)
	}

	printOK(cfg, out)
	return exitcode.Success
}

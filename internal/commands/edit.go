package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"caretaker/internal/config"
	"caretaker/internal/exitcode"
	"caretaker/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"rename"} }
func (c *EditCmd) Synopsis() string   { return "Change a task title" }
func (c *EditCmd) Usage() string      { return "caretaker edit <ref> <title...>" }
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, rest, code := lookupTask(ctx, cfg, svc, args, errOut)
	if code != exitcode.Success {
		return code
	}

	title := strings.TrimSpace(strings.Join(rest, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	if _, err := svc.UpdateTask(ctx, task.WithTitle(title)); err != nil {
		return backendError(errOut, err)
	}

	printOK(cfg, out)
	return exitcode.Success
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"caretaker/internal/config"
	"caretaker/internal/exitcode"
	"caretaker/internal/output"
	"caretaker/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `caretaker` (no args) and `caretaker list`.
type ListCmd struct{}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks grouped by date" }
func (c *ListCmd) Usage() string      { return "caretaker list" }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	grouped, err := loadGroups(ctx, cfg, svc)
	if err != nil {
		return backendError(errOut, err)
	}

	if grouped.Len() == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatGroups(out, grouped)
	return exitcode.Success
}

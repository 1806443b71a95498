package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"caretaker/internal/config"
	"caretaker/internal/exitcode"
	"caretaker/internal/output"
	"caretaker/internal/service"
	"caretaker/internal/suggest"
)

func init() {
	Register(&SuggestCmd{})
}

// SuggestCmd implements the suggest command.
type SuggestCmd struct {
	flat bool
}

// SetFlat selects the flat reply shape (for testing).
func (c *SuggestCmd) SetFlat(flat bool) {
	c.flat = flat
}

func (c *SuggestCmd) Name() string       { return "suggest" }
func (c *SuggestCmd) Aliases() []string  { return []string{"ask"} }
func (c *SuggestCmd) Synopsis() string   { return "Ask for suggestions about your tasks" }
func (c *SuggestCmd) Usage() string      { return "caretaker suggest [--flat] <prompt...>" }
func (c *SuggestCmd) NeedsBackend() bool { return true }

func (c *SuggestCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.flat, "flat", false, "")
}

func (c *SuggestCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		fmt.Fprintln(errOut, "error: prompt required")
		return exitcode.UserError
	}

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return backendError(errOut, err)
	}

	shape := suggest.ShapeGrouped
	if c.flat {
		shape = suggest.ShapeFlat
	}

	result, err := suggest.NewPipeline(svc, cfg.Log).Run(ctx, tasks, prompt, shape, cfg.Today())
	if err != nil {
		return noSuggestion(errOut, err)
	}
	if len(result) == 0 {
		return noSuggestion(errOut, service.ErrNoSuggestion)
	}

	output.FormatSuggestions(out, result)
	return exitcode.Success
}

// noSuggestion reports a failed suggestion request and returns its exit code.
func noSuggestion(errOut io.Writer, err error) int {
	if errors.Is(err, suggest.ErrEmptyPrompt) {
		fmt.Fprintln(errOut, "error: prompt required")
		return exitcode.UserError
	}
	if errors.Is(err, service.ErrNoSuggestion) {
		fmt.Fprintln(errOut, "error: no suggestion available")
		return exitcode.NoSuggestion
	}
	fmt.Fprintf(errOut, "error: no suggestion available: %v\n", err)
	return exitcode.NoSuggestion
}

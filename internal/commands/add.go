package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"caretaker/internal/config"
	"caretaker/internal/exitcode"
	"caretaker/internal/service"
)

// DateLayout is the format of the --date flag.
const DateLayout = "2006-01-02"

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	date string
}

// SetDate sets the --date value (for testing).
func (c *AddCmd) SetDate(date string) {
	c.date = date
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "caretaker add [--date YYYY-MM-DD] <title...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	createdAt, err := c.createdAt(cfg.Now())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task := service.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    service.StatusPending,
		CreatedAt: createdAt,
	}
	created, err := svc.CreateTask(ctx, task)
	if err != nil {
		return backendError(errOut, err)
	}
	cfg.Log.Debug().Str("id", created.ID).Msg("task created")

	printOK(cfg, out)
	return exitcode.Success
}

// createdAt returns now in UTC, moved to the --date calendar day when set.
func (c *AddCmd) createdAt(now time.Time) (time.Time, error) {
	now = now.UTC()
	if c.date == "" {
		return now, nil
	}
	day, err := time.Parse(DateLayout, c.date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", c.date)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC), nil
}

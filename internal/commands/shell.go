package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"caretaker/internal/board"
	"caretaker/internal/config"
	"caretaker/internal/exitcode"
	"caretaker/internal/groups"
	"caretaker/internal/output"
	"caretaker/internal/reorder"
	"caretaker/internal/service"
	"caretaker/internal/suggest"
)

// ShellPrompt is printed before each shell line unless --quiet is set.
const ShellPrompt = "caretaker> "

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the shell command: a line-oriented session holding
// the task list in memory so tasks can be reordered between refreshes.
type ShellCmd struct {
	in io.Reader
}

// SetInput sets the line source (for testing). Defaults to stdin.
func (c *ShellCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *ShellCmd) Name() string       { return "shell" }
func (c *ShellCmd) Aliases() []string  { return []string{"sh"} }
func (c *ShellCmd) Synopsis() string   { return "Start an interactive session" }
func (c *ShellCmd) Usage() string      { return "caretaker shell" }
func (c *ShellCmd) NeedsBackend() bool { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	in := c.in
	if in == nil {
		in = os.Stdin
	}

	ctx, cancel := context.WithCancel(ctx)
	b := board.New(svc, board.Options{Log: cfg.Log, Clock: cfg.Now})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		b.Run(ctx)
	}()
	defer func() {
		cancel()
		<-stopped
	}()

	sh := &shell{board: b, cfg: cfg, out: out, errOut: errOut}
	sh.exec(ctx, []string{"refresh"})

	scanner := bufio.NewScanner(in)
	for {
		if !cfg.Quiet {
			fmt.Fprint(out, ShellPrompt)
		}
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return exitcode.Success
		}
		sh.exec(ctx, fields)
		if ctx.Err() != nil {
			return exitcode.Success
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out)
	}
	return exitcode.Success
}

type shell struct {
	board  *board.Board
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
}

// exec runs one shell line and reports its outcome.
func (sh *shell) exec(ctx context.Context, fields []string) {
	name, args := fields[0], fields[1:]
	var err error
	switch name {
	case "list", "ls":
		sh.list(sh.board.Snapshot())
		return
	case "help", "?":
		fmt.Fprint(sh.out, shellHelp)
		return
	case "refresh":
		err = sh.board.Refresh(ctx)
	case "add":
		err = sh.board.Add(ctx, strings.Join(args, " "))
	case "done", "undo":
		status := service.StatusDone
		if name == "undo" {
			status = service.StatusPending
		}
		err = sh.withTask(args, false, func(t service.Task, _ []string) error {
			return sh.board.SetStatus(ctx, t.ID, status)
		})
	case "edit":
		err = sh.withTask(args, true, func(t service.Task, rest []string) error {
			return sh.board.Rename(ctx, t.ID, strings.Join(rest, " "))
		})
	case "rm":
		err = sh.withTask(args, false, func(t service.Task, _ []string) error {
			return sh.board.Delete(ctx, t.ID)
		})
	case "suggest":
		sh.suggest(ctx, args)
		return
	case "move":
		err = sh.move(ctx, args)
	case "order":
		err = sh.order(ctx, args)
	case "drag":
		err = sh.drag(ctx, args)
	default:
		fmt.Fprintf(sh.errOut, "error: unknown command: %s\n", name)
		return
	}

	if err != nil {
		sh.report(err)
		return
	}
	snap, err := sh.board.Idle(ctx)
	if err != nil {
		return
	}
	if snap.Err != nil {
		sh.report(snap.Err)
		return
	}
	sh.list(snap)
}

func (sh *shell) list(snap board.Snapshot) {
	if snap.Groups.Len() == 0 {
		if !sh.cfg.Quiet {
			fmt.Fprintln(sh.out, "no tasks found")
		}
		return
	}
	output.FormatGroups(sh.out, snap.Groups)
}

func (sh *shell) report(err error) {
	switch {
	case errors.Is(err, reorder.ErrStaleIntent),
		errors.Is(err, board.ErrEmptyTitle),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrRefNotFound),
		errors.Is(err, service.ErrNotFound),
		errors.As(err, new(*usageError)):
		fmt.Fprintf(sh.errOut, "error: %v\n", err)
	default:
		fmt.Fprintf(sh.errOut, "error: backend error: %v\n", err)
	}
}

// usageError marks a malformed shell line.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// withTask resolves the reference at the start of args against the current
// snapshot and calls fn with the task and the remaining args.
func (sh *shell) withTask(args []string, allowRest bool, fn func(service.Task, []string) error) error {
	task, rest, err := sh.resolve(args)
	if err != nil {
		return err
	}
	if !allowRest && len(rest) > 0 {
		return usagef("unexpected argument: %s", rest[0])
	}
	return fn(task, rest)
}

func (sh *shell) resolve(args []string) (service.Task, []string, error) {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			return service.Task{}, nil, err
		}
		return service.Task{}, nil, usagef("%v", err)
	}
	task, err := Resolve(sh.board.Snapshot().Groups, ref)
	if err != nil {
		if errors.Is(err, ErrRefNotFound) {
			return service.Task{}, nil, err
		}
		return service.Task{}, nil, usagef("%v", err)
	}
	return task, args[n:], nil
}

func (sh *shell) suggest(ctx context.Context, args []string) {
	shape := suggest.ShapeGrouped
	if len(args) > 0 && args[0] == "--flat" {
		shape = suggest.ShapeFlat
		args = args[1:]
	}

	if err := sh.board.Suggest(ctx, strings.Join(args, " "), shape); err != nil {
		noSuggestion(sh.errOut, err)
		return
	}
	snap, err := sh.board.Idle(ctx)
	if err != nil {
		return
	}
	if snap.Err != nil {
		noSuggestion(sh.errOut, snap.Err)
		return
	}
	if len(snap.Suggestions) == 0 {
		noSuggestion(sh.errOut, service.ErrNoSuggestion)
		return
	}
	output.FormatSuggestions(sh.out, snap.Suggestions)
}

// move handles "move <ref> <group-letter>".
func (sh *shell) move(ctx context.Context, args []string) error {
	task, rest, err := sh.resolve(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return usagef("usage: move <ref> <group-letter>")
	}
	label, err := sh.groupLabel(rest[0])
	if err != nil {
		return err
	}
	return sh.board.Reorder(ctx, reorder.AcrossGroups{TaskID: task.ID, ToGroup: label})
}

// order handles "order <group-letter> <n...>", listing every task number of
// the group in its new order.
func (sh *shell) order(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usagef("usage: order <group-letter> <n...>")
	}
	label, err := sh.groupLabel(args[0])
	if err != nil {
		return err
	}

	tasks := sh.board.Snapshot().Groups.Tasks(label)
	ids := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 || n > len(tasks) {
			return usagef("task number out of range: %s", a)
		}
		ids = append(ids, tasks[n-1].ID)
	}
	return sh.board.Reorder(ctx, reorder.WithinGroup{Group: label, TaskIDs: ids})
}

// drag handles "drag <ref> <ref|group-letter>": the task is dropped onto
// another task's row, or onto a group header.
func (sh *shell) drag(ctx context.Context, args []string) error {
	src, rest, err := sh.resolve(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return usagef("usage: drag <ref> <ref|group-letter>")
	}

	c := sh.board.Snapshot().Groups
	flat := c.Flatten()
	from := rowOf(flat, func(it groups.Item) bool { return !it.Header && it.Task.ID == src.ID })

	var to int
	if len(rest) == 1 && len(rest[0]) == 1 && isLetter(rune(rest[0][0])) {
		label, err := sh.groupLabel(rest[0])
		if err != nil {
			return err
		}
		to = rowOf(flat, func(it groups.Item) bool { return it.Header && it.Group == label })
	} else {
		dst, extra, err := sh.resolve(rest)
		if err != nil {
			return err
		}
		if len(extra) > 0 {
			return usagef("unexpected argument: %s", extra[0])
		}
		to = rowOf(flat, func(it groups.Item) bool { return !it.Header && it.Task.ID == dst.ID })
	}

	intent, ok := reorder.FromDrag(flat, from, to)
	if !ok {
		return usagef("nothing to move")
	}
	return sh.board.Reorder(ctx, intent)
}

func (sh *shell) groupLabel(arg string) (string, error) {
	letter, err := ParseGroupLetter(arg)
	if err != nil {
		return "", usagef("%v", err)
	}
	label, err := GroupLabel(sh.board.Snapshot().Groups, letter)
	if err != nil {
		return "", usagef("%v", err)
	}
	return label, nil
}

func rowOf(flat []groups.Item, match func(groups.Item) bool) int {
	for i, it := range flat {
		if match(it) {
			return i
		}
	}
	return -1
}

const shellHelp = `Commands:
  list                         Show tasks grouped by date
  refresh                      Reload tasks from the store
  add <title...>               Create a task dated now
  done <ref>, undo <ref>       Mark a task completed or pending
  edit <ref> <title...>        Change a task title
  rm <ref>                     Delete a task
  suggest [--flat] <prompt...> Ask for suggestions
  move <ref> <group-letter>    Move a task to the end of another group
  order <group-letter> <n...>  Reorder a group, e.g. order a 3 1 2
  drag <ref> <ref|letter>      Drop a task onto another task or a group header
  quit                         Leave the shell

Reorders are kept for this session only; refresh restores the store's order.
`

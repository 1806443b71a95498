package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"caretaker/internal/bucket"
	"caretaker/internal/config"
	"caretaker/internal/exitcode"
	"caretaker/internal/groups"
	"caretaker/internal/service"
)

// loadGroups fetches every task and buckets it by date relative to cfg's today.
func loadGroups(ctx context.Context, cfg *config.Config, svc service.Service) (groups.Collection, error) {
	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return groups.Collection{}, err
	}
	c := groups.GroupBy(tasks, bucket.Label, cfg.Today())
	cfg.Log.Debug().Int("tasks", len(tasks)).Int("groups", c.Len()).Msg("tasks loaded")
	return c, nil
}

// lookupTask parses a reference from args, fetches the tasks and resolves it.
// It returns the task and the args left after the reference. On failure the
// error has been reported and code is the exit code.
func lookupTask(ctx context.Context, cfg *config.Config, svc service.Service, args []string, errOut io.Writer) (task service.Task, rest []string, code int) {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, nil, exitcode.UserError
	}

	c, err := loadGroups(ctx, cfg, svc)
	if err != nil {
		return service.Task{}, nil, backendError(errOut, err)
	}

	task, err = Resolve(c, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, nil, exitcode.UserError
	}
	return task, args[n:], exitcode.Success
}

// backendError reports a store or provider failure and returns its exit code.
// A task that vanished on the server is a user error.
func backendError(errOut io.Writer, err error) int {
	if errors.Is(err, service.ErrNotFound) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

func printOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}

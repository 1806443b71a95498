// Package main is the entry point for the caretaker CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"caretaker/internal/backend/gemini"
	"caretaker/internal/backend/restapi"
	"caretaker/internal/cli"
	"caretaker/internal/commands"
	"caretaker/internal/config"
	"caretaker/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// The store and the provider are separate remotes joined into one service
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		store, err := restapi.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return service.Join(store, gemini.New(cfg)), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

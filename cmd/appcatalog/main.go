package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const (
	exitUsage      = 1
	exitRunFailure = 2
)

func main() {
	// A missing .env is normal; variables already set are never overridden.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(exitCode(err))
	}
}

// runError marks failures of a command that started doing work, as opposed
// to usage and configuration errors.
type runError struct {
	err error
}

func (e *runError) Error() string { return e.err.Error() }

func (e *runError) Unwrap() error { return e.err }

func runFailure(err error) error {
	if err == nil {
		return nil
	}
	return &runError{err: err}
}

func exitCode(err error) int {
	var re *runError
	if errors.As(err, &re) {
		return exitRunFailure
	}
	return exitUsage
}

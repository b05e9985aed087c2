// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package execx runs external tools synchronously. Every stage that
// shells out (conversion, recognition, rendering) goes through the
// Runner interface so tests can substitute a mock.
package execx

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Runner abstracts external command execution.
type Runner interface {
	// LookPath reports the absolute path of an executable on PATH.
	LookPath(file string) (string, error)

	// RunSilent executes a command to completion, discarding its
	// output. Returns an error on non-zero exit.
	RunSilent(name string, args ...string) error

	// RunInherit executes a command with the operator's stdout and
	// stderr attached, blocks until it exits, and returns its exit
	// code. The error is non-nil only when the command could not be
	// started at all.
	RunInherit(name string, args ...string) (int, error)
}

// OSRunner is the production Runner backed by os/exec.
type OSRunner struct{}

func (OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OSRunner) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (OSRunner) RunInherit(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("running %s: %w", name, err)
}

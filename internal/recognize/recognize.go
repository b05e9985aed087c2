// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recognize invokes the external optical music recognition
// tool. Recognition itself is an opaque collaborator; this package only
// runs it and reports its exit code.
package recognize

import (
	"fmt"
	"slices"

	"github.com/mkostiv/scorebatch/internal/execx"
	"github.com/mkostiv/scorebatch/pkg/types"
)

// DefaultCommand is the recognition binary used when none is configured.
const DefaultCommand = "homr"

// Recognizer runs recognition on a single normalized image.
type Recognizer interface {
	// Name returns the tool name for diagnostics.
	Name() string

	// Check verifies the tool can be invoked.
	Check() error

	// Run invokes the tool with imagePath as its sole positional
	// argument, with stdout/stderr inherited by the operator, and
	// returns the tool's exit code. The error is non-nil only when
	// the tool could not be started.
	Run(imagePath string) (int, error)
}

// Tool is a Recognizer backed by an external command.
type Tool struct {
	command string
	args    []string
	runner  execx.Runner
	resolve func(string) string
}

// New builds a Tool from configuration. An empty command falls back to
// DefaultCommand. resolve maps the tool name through any configured
// path overrides; nil means no overrides.
func New(cfg types.RecognitionConfig, r execx.Runner, resolve func(string) string) *Tool {
	command := cfg.Command
	if command == "" {
		command = DefaultCommand
	}
	return &Tool{command: command, args: cfg.Args, runner: r, resolve: resolve}
}

func (t *Tool) Name() string { return t.command }

func (t *Tool) bin() string {
	if t.resolve == nil {
		return t.command
	}
	return t.resolve(t.command)
}

// Check verifies the recognition binary is on PATH before the batch
// starts, so a missing tool fails fast instead of once per file.
func (t *Tool) Check() error {
	if _, err := t.runner.LookPath(t.bin()); err != nil {
		return fmt.Errorf("recognition tool %s not found on PATH: %w", t.command, err)
	}
	return nil
}

func (t *Tool) Run(imagePath string) (int, error) {
	args := append(slices.Clone(t.args), imagePath)
	return t.runner.RunInherit(t.bin(), args...)
}

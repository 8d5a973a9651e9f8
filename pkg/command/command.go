// Package command provides the process-execution boundary for prepenv.
// All external tool invocations (pip, python) go through the Runner
// interface so higher layers can be tested without touching the system.
package command

import (
	"context"
	"os"
	"os/exec"

	"github.com/arthur-debert/prepenv/pkg/logging"
)

// Command describes a single external process invocation.
type Command struct {
	// Name is the executable to run, resolved via PATH
	Name string

	// Args are the arguments passed to the executable
	Args []string

	// Dir is the working directory; empty means inherit
	Dir string

	// Env holds extra environment entries appended to the ambient
	// environment, in KEY=VALUE form
	Env []string
}

// Runner executes commands against the host system
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// osRunner implements Runner using os/exec
type osRunner struct{}

// NewOSRunner creates a Runner backed by the real system.
// Child stdout/stderr pass straight through so tool output
// surfaces untranslated.
func NewOSRunner() Runner {
	return &osRunner{}
}

func (r *osRunner) Run(ctx context.Context, cmd Command) error {
	logging.LogCommand(cmd.Name, cmd.Args)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	return c.Run()
}

package testutil

import (
	"context"
	"strings"

	"github.com/arthur-debert/prepenv/pkg/command"
)

// MockRunner is a mock implementation of the command.Runner interface for testing.
// It records every command it receives and never touches the system.
type MockRunner struct {
	// RunFunc, when set, decides the outcome of each invocation
	RunFunc func(ctx context.Context, cmd command.Command) error

	// Commands holds every command passed to Run, in order
	Commands []command.Command
}

// Run records the command and delegates to RunFunc if set.
func (m *MockRunner) Run(ctx context.Context, cmd command.Command) error {
	m.Commands = append(m.Commands, cmd)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd)
	}
	return nil
}

// CommandLines renders the recorded commands one per line, which keeps
// ordering assertions readable in tests.
func (m *MockRunner) CommandLines() []string {
	lines := make([]string, 0, len(m.Commands))
	for _, cmd := range m.Commands {
		parts := append([]string{cmd.Name}, cmd.Args...)
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}

// Reset clears the recorded commands.
func (m *MockRunner) Reset() {
	m.Commands = nil
}

// Verify interface compliance
var _ command.Runner = (*MockRunner)(nil)

package provision

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/prepenv/pkg/command"
	"github.com/arthur-debert/prepenv/pkg/config"
	"github.com/arthur-debert/prepenv/pkg/output"
	"github.com/arthur-debert/prepenv/pkg/pip"
	"github.com/arthur-debert/prepenv/pkg/testutil"
	"github.com/arthur-debert/prepenv/pkg/workingcopy"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Pip.Executable = "pip"
	cfg.Pip.Python = "python"
	cfg.Pip.Locale = "C.UTF-8"
	cfg.Manifests.Requirements = "requirements.txt"
	cfg.Manifests.Testing = "requirements-testing.txt"
	cfg.Testing.NoBinary = "pytest"
	cfg.Downgrade.Package = "requests"
	cfg.Downgrade.Version = "2.6.0"
	cfg.Remove.Package = "ipython"
	return cfg
}

func TestStandardSequence(t *testing.T) {
	runner := &testutil.MockRunner{}
	cfg := testConfig()

	steps := BuildSteps(StepsOptions{Config: cfg, Pip: pip.New(cfg.Pip.Executable, runner)})
	p := New(Options{Steps: steps})
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{
		"pip install --quiet --requirement=requirements.txt",
		"pip install --quiet --editable .",
		"pip install --quiet --requirement=requirements-testing.txt --no-binary=pytest",
		"pip install --quiet requests==2.6.0",
		"pip uninstall --yes ipython",
	}, runner.CommandLines())

	// The editable install carries the pinned locale
	assert.Equal(t, []string{"LC_ALL=C.UTF-8"}, runner.Commands[1].Env)
}

func TestSequenceIsStateless(t *testing.T) {
	runner := &testutil.MockRunner{}
	cfg := testConfig()

	steps := BuildSteps(StepsOptions{Config: cfg, Pip: pip.New(cfg.Pip.Executable, runner)})
	p := New(Options{Steps: steps})

	require.NoError(t, p.Run(context.Background()))
	first := runner.CommandLines()

	runner.Reset()
	require.NoError(t, p.Run(context.Background()))

	// Two consecutive runs issue the identical command sequence
	assert.Equal(t, first, runner.CommandLines())
}

func TestProjectInstallFailureAbortsBeforeTestDependencies(t *testing.T) {
	runner := &testutil.MockRunner{
		RunFunc: func(ctx context.Context, cmd command.Command) error {
			for _, arg := range cmd.Args {
				if arg == "--editable" {
					return errors.New("error in setup command")
				}
			}
			return nil
		},
	}
	cfg := testConfig()

	steps := BuildSteps(StepsOptions{Config: cfg, Pip: pip.New(cfg.Pip.Executable, runner)})
	p := New(Options{Steps: steps})

	err := p.Run(context.Background())
	require.Error(t, err)

	// Nothing past the editable install was attempted
	require.Len(t, runner.Commands, 2)
	assert.NotContains(t, strings.Join(runner.CommandLines(), "\n"), "requirements-testing.txt")
}

func TestUninstallFailureStillSucceeds(t *testing.T) {
	runner := &testutil.MockRunner{
		RunFunc: func(ctx context.Context, cmd command.Command) error {
			if cmd.Args[0] == "uninstall" {
				return errors.New("ipython is not installed")
			}
			return nil
		},
	}
	cfg := testConfig()

	steps := BuildSteps(StepsOptions{Config: cfg, Pip: pip.New(cfg.Pip.Executable, runner)})
	p := New(Options{Steps: steps})

	assert.NoError(t, p.Run(context.Background()))
}

func TestDeveloperModeOffSkipsWorkingCopies(t *testing.T) {
	runner := &testutil.MockRunner{}
	cfg := testConfig()

	steps := BuildSteps(StepsOptions{
		Config:        cfg,
		Pip:           pip.New(cfg.Pip.Executable, runner),
		DeveloperMode: false,
	})

	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	assert.NotContains(t, names, "install-working-copies")
}

func TestDeveloperModeInstallsWorkingCopies(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "coloredlogs")
	require.NoError(t, os.MkdirAll(dir, 0755))

	runner := &testutil.MockRunner{
		RunFunc: func(ctx context.Context, cmd command.Command) error {
			if len(cmd.Args) > 1 && cmd.Args[1] == "sdist" {
				distDir := filepath.Join(cmd.Dir, workingcopy.DistDir)
				if err := os.MkdirAll(distDir, 0755); err != nil {
					return err
				}
				return os.WriteFile(filepath.Join(distDir, "coloredlogs-1.0.tar.gz"), []byte("sdist"), 0644)
			}
			return nil
		},
	}
	cfg := testConfig()
	pipClient := pip.New(cfg.Pip.Executable, runner)

	wc := workingcopy.New(workingcopy.Options{
		Root:     root,
		Projects: []string{"coloredlogs"},
		Python:   cfg.Pip.Python,
		Pip:      pipClient,
		Runner:   runner,
	})

	steps := BuildSteps(StepsOptions{
		Config:        cfg,
		Pip:           pipClient,
		WorkingCopies: wc,
		DeveloperMode: true,
	})
	p := New(Options{Steps: steps})
	require.NoError(t, p.Run(context.Background()))

	lines := runner.CommandLines()
	require.Len(t, lines, 7)
	assert.Equal(t, "python setup.py sdist", lines[3])
	assert.Contains(t, lines[4], "--no-binary=:all:")

	// Working copies run after test dependencies and before the
	// downgrade target
	assert.Contains(t, lines[2], "requirements-testing.txt")
	assert.Contains(t, lines[5], "requests==2.6.0")
}

func TestAnnouncementsUseFixedPrefix(t *testing.T) {
	var buf bytes.Buffer
	runner := &testutil.MockRunner{}
	cfg := testConfig()

	steps := BuildSteps(StepsOptions{Config: cfg, Pip: pip.New(cfg.Pip.Executable, runner)})
	p := New(Options{Steps: steps, Announcer: output.NewAnnouncer(&buf)})
	require.NoError(t, p.Run(context.Background()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, output.Prefix), "line %q", line)
	}
	assert.Contains(t, lines[4], "Removing ipython ..")
}

func TestDryRunIssuesNoCommands(t *testing.T) {
	var buf bytes.Buffer
	runner := &testutil.MockRunner{}
	cfg := testConfig()

	steps := BuildSteps(StepsOptions{Config: cfg, Pip: pip.New(cfg.Pip.Executable, runner)})
	p := New(Options{Steps: steps, DryRun: true, Announcer: output.NewAnnouncer(&buf)})
	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, runner.Commands)
	// Announcements still show what would run
	assert.Contains(t, buf.String(), "Installing dependencies ..")
}

package pip

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/prepenv/pkg/command"
	preperr "github.com/arthur-debert/prepenv/pkg/errors"
	"github.com/arthur-debert/prepenv/pkg/testutil"
)

func TestInstallArguments(t *testing.T) {
	tests := []struct {
		name string
		opts InstallOptions
		want []string
	}{
		{
			name: "requirements manifest",
			opts: InstallOptions{Quiet: true, Requirement: "requirements.txt"},
			want: []string{"install", "--quiet", "--requirement=requirements.txt"},
		},
		{
			name: "editable install",
			opts: InstallOptions{Quiet: true, Editable: "."},
			want: []string{"install", "--quiet", "--editable", "."},
		},
		{
			name: "no-binary for one package",
			opts: InstallOptions{Quiet: true, Requirement: "requirements-testing.txt", NoBinary: "pytest"},
			want: []string{"install", "--quiet", "--requirement=requirements-testing.txt", "--no-binary=pytest"},
		},
		{
			name: "pinned package",
			opts: InstallOptions{Quiet: true, Packages: []string{"requests==2.6.0"}},
			want: []string{"install", "--quiet", "requests==2.6.0"},
		},
		{
			name: "archive built from source",
			opts: InstallOptions{NoBinary: NoBinaryAll, Packages: []string{"dist/coloredlogs-1.0.tar.gz"}},
			want: []string{"install", "--no-binary=:all:", "dist/coloredlogs-1.0.tar.gz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &testutil.MockRunner{}
			p := New("pip", runner)

			require.NoError(t, p.Install(context.Background(), tt.opts))
			require.Len(t, runner.Commands, 1)
			assert.Equal(t, "pip", runner.Commands[0].Name)
			assert.Equal(t, tt.want, runner.Commands[0].Args)
		})
	}
}

func TestInstallPassesEnvironment(t *testing.T) {
	runner := &testutil.MockRunner{}
	p := New("pip", runner)

	err := p.Install(context.Background(), InstallOptions{
		Quiet:    true,
		Editable: ".",
		Env:      []string{"LC_ALL=C.UTF-8"},
	})
	require.NoError(t, err)
	require.Len(t, runner.Commands, 1)
	assert.Equal(t, []string{"LC_ALL=C.UTF-8"}, runner.Commands[0].Env)
}

func TestInstallFailureIsCoded(t *testing.T) {
	runner := &testutil.MockRunner{
		RunFunc: func(ctx context.Context, cmd command.Command) error {
			return errors.New("exit status 1")
		},
	}
	p := New("pip", runner)

	err := p.Install(context.Background(), InstallOptions{Quiet: true, Requirement: "requirements.txt"})
	require.Error(t, err)
	assert.True(t, preperr.IsErrorCode(err, preperr.ErrPipInstall))
}

func TestUninstall(t *testing.T) {
	runner := &testutil.MockRunner{}
	p := New("pip", runner)

	require.NoError(t, p.Uninstall(context.Background(), "ipython"))
	require.Len(t, runner.Commands, 1)
	assert.Equal(t, []string{"uninstall", "--yes", "ipython"}, runner.Commands[0].Args)
}

func TestUninstallFailureIsCoded(t *testing.T) {
	runner := &testutil.MockRunner{
		RunFunc: func(ctx context.Context, cmd command.Command) error {
			return errors.New("not installed")
		},
	}
	p := New("pip", runner)

	err := p.Uninstall(context.Background(), "ipython")
	require.Error(t, err)
	assert.True(t, preperr.IsErrorCode(err, preperr.ErrPipRemove))
}

func TestCustomExecutable(t *testing.T) {
	runner := &testutil.MockRunner{}
	p := New("pip3.9", runner)

	require.NoError(t, p.Install(context.Background(), InstallOptions{Packages: []string{"requests"}}))
	assert.Equal(t, "pip3.9", runner.Commands[0].Name)
}

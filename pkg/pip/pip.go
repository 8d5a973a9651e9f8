// Package pip adapts the ambient pip executable. It builds command
// lines from structured options and leaves pip's own output alone so
// failures surface exactly as pip reports them.
package pip

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/prepenv/pkg/command"
	"github.com/arthur-debert/prepenv/pkg/errors"
	"github.com/arthur-debert/prepenv/pkg/logging"
)

// NoBinaryAll forces every package in an install invocation to be
// built from source.
const NoBinaryAll = ":all:"

// Pip runs install and uninstall operations against one pip executable
type Pip struct {
	exe    string
	runner command.Runner
	logger zerolog.Logger
}

// New creates a Pip bound to the given executable name.
func New(exe string, runner command.Runner) *Pip {
	return &Pip{
		exe:    exe,
		runner: runner,
		logger: logging.GetLogger("pip"),
	}
}

// InstallOptions describes a single pip install invocation.
type InstallOptions struct {
	// Quiet suppresses pip's progress output
	Quiet bool

	// Requirement is a requirements manifest to install from
	Requirement string

	// Editable installs the given path in development mode
	Editable string

	// NoBinary excludes prebuilt artifacts for one package name,
	// or for every package when set to NoBinaryAll
	NoBinary string

	// Packages are requirement specifiers or archive paths
	Packages []string

	// Env holds extra KEY=VALUE entries for the pip process
	Env []string
}

// Install runs pip install with the given options.
func (p *Pip) Install(ctx context.Context, opts InstallOptions) error {
	args := []string{"install"}
	if opts.Quiet {
		args = append(args, "--quiet")
	}
	if opts.Requirement != "" {
		args = append(args, "--requirement="+opts.Requirement)
	}
	if opts.NoBinary != "" {
		args = append(args, "--no-binary="+opts.NoBinary)
	}
	if opts.Editable != "" {
		args = append(args, "--editable", opts.Editable)
	}
	args = append(args, opts.Packages...)

	err := p.runner.Run(ctx, command.Command{
		Name: p.exe,
		Args: args,
		Env:  opts.Env,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrPipInstall, "pip install failed").
			WithDetail("args", args)
	}

	p.logger.Debug().Strs("args", args).Msg("pip install completed")
	return nil
}

// Uninstall removes a package without prompting. The error is returned
// as-is coded; callers decide whether it is fatal.
func (p *Pip) Uninstall(ctx context.Context, pkg string) error {
	args := []string{"uninstall", "--yes", pkg}

	err := p.runner.Run(ctx, command.Command{Name: p.exe, Args: args})
	if err != nil {
		return errors.Wrapf(err, errors.ErrPipRemove, "pip uninstall %s failed", pkg)
	}

	p.logger.Debug().Str("package", pkg).Msg("pip uninstall completed")
	return nil
}

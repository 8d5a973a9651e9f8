// Package workingcopy installs locally checked-out sibling projects in
// place of their published releases. Each candidate directory is
// guarded by a non-blocking advisory lock so two provisioning runs
// never build a source distribution from the same checkout at once.
package workingcopy

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/prepenv/pkg/command"
	"github.com/arthur-debert/prepenv/pkg/errors"
	"github.com/arthur-debert/prepenv/pkg/lockfile"
	"github.com/arthur-debert/prepenv/pkg/logging"
	"github.com/arthur-debert/prepenv/pkg/pip"
)

// DistDir is the build-output scratch directory inside a checkout
const DistDir = "dist"

// Installer builds and installs working copies of sibling projects
type Installer struct {
	root     string
	projects []string
	python   string
	pip      *pip.Pip
	runner   command.Runner
	logger   zerolog.Logger
}

// Options configures an Installer.
type Options struct {
	// Root is the directory containing the checkouts
	Root string

	// Projects are the candidate checkout names, in install order
	Projects []string

	// Python is the interpreter used to build source distributions
	Python string

	// Pip installs the resulting archives
	Pip *pip.Pip

	// Runner executes the build commands
	Runner command.Runner
}

// New creates an Installer.
func New(opts Options) *Installer {
	return &Installer{
		root:     opts.Root,
		projects: opts.Projects,
		python:   opts.Python,
		pip:      opts.Pip,
		runner:   opts.Runner,
		logger:   logging.GetLogger("workingcopy"),
	}
}

// InstallAll processes every candidate project in order. Missing
// checkouts and lock contention are skipped silently; build and
// install failures abort.
func (i *Installer) InstallAll(ctx context.Context) error {
	for _, name := range i.projects {
		if err := i.installOne(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) installOne(ctx context.Context, name string) error {
	dir := filepath.Join(i.root, name)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		i.logger.Debug().Str("project", name).Str("directory", dir).
			Msg("No working copy checked out, skipping")
		return nil
	}

	lock := lockfile.ForDirectory(dir)
	acquired, err := lock.TryAcquire()
	if err != nil {
		return err
	}
	if !acquired {
		// Another run owns this checkout; not an error
		i.logger.Debug().Str("project", name).Str("lock", lock.Path()).
			Msg("Working copy locked by a concurrent run, skipping")
		return nil
	}
	defer func() { _ = lock.Release() }()

	archive, err := i.buildSdist(ctx, name, dir)
	if err != nil {
		return err
	}

	if err := i.pip.Install(ctx, pip.InstallOptions{
		Quiet:    true,
		NoBinary: pip.NoBinaryAll,
		Packages: []string{archive},
	}); err != nil {
		return err
	}

	i.logger.Info().Str("project", name).Str("archive", archive).
		Msg("Installed working copy")
	return nil
}

// buildSdist clears the scratch directory, builds a fresh source
// distribution and returns the path of the resulting archive.
func (i *Installer) buildSdist(ctx context.Context, name, dir string) (string, error) {
	distDir := filepath.Join(dir, DistDir)
	if err := os.RemoveAll(distDir); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirRemove, "cannot clear %s", distDir).
			WithDetail("project", name)
	}

	err := i.runner.Run(ctx, command.Command{
		Name: i.python,
		Args: []string{"setup.py", "sdist"},
		Dir:  dir,
	})
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSdistBuild, "sdist build failed for %s", name).
			WithDetail("directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(distDir, "*"))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNoArchive, "cannot list %s", distDir)
	}
	if len(matches) == 0 {
		return "", errors.Newf(errors.ErrNoArchive, "sdist for %s produced no archive in %s", name, distDir)
	}

	return matches[0], nil
}

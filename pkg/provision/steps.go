package provision

import (
	"context"
	"fmt"

	"github.com/arthur-debert/prepenv/pkg/config"
	"github.com/arthur-debert/prepenv/pkg/pip"
	"github.com/arthur-debert/prepenv/pkg/workingcopy"
)

// StepsOptions carries the collaborators the standard sequence needs.
type StepsOptions struct {
	Config *config.Config
	Pip    *pip.Pip

	// WorkingCopies is consulted only when DeveloperMode is set
	WorkingCopies *workingcopy.Installer

	// DeveloperMode enables the working-copy step, decided once at
	// startup
	DeveloperMode bool
}

// BuildSteps assembles the standard provisioning sequence: install
// dependencies, install the project under test, install test
// dependencies, optionally install working copies, pin the downgrade
// target, and best-effort remove the unrelated package.
func BuildSteps(opts StepsOptions) []Step {
	cfg := opts.Config
	pipClient := opts.Pip

	steps := []Step{
		{
			Name:     "install-dependencies",
			Announce: "Installing dependencies ..",
			Policy:   Fatal,
			Run: func(ctx context.Context) error {
				return pipClient.Install(ctx, pip.InstallOptions{
					Quiet:       true,
					Requirement: cfg.Manifests.Requirements,
				})
			},
		},
		{
			Name:     "install-project",
			Announce: "Installing project under test ..",
			Policy:   Fatal,
			Run: func(ctx context.Context) error {
				// The locale is pinned so install-time metadata
				// generation is encoding-stable
				return pipClient.Install(ctx, pip.InstallOptions{
					Quiet:    true,
					Editable: ".",
					Env:      []string{"LC_ALL=" + cfg.Pip.Locale},
				})
			},
		},
		{
			Name:     "install-test-dependencies",
			Announce: "Installing test dependencies ..",
			Policy:   Fatal,
			Run: func(ctx context.Context) error {
				return pipClient.Install(ctx, pip.InstallOptions{
					Quiet:       true,
					Requirement: cfg.Manifests.Testing,
					NoBinary:    cfg.Testing.NoBinary,
				})
			},
		},
	}

	if opts.DeveloperMode && opts.WorkingCopies != nil {
		steps = append(steps, Step{
			Name:     "install-working-copies",
			Announce: "Installing working copies ..",
			Policy:   Fatal,
			Run:      opts.WorkingCopies.InstallAll,
		})
	}

	steps = append(steps,
		Step{
			Name: "install-downgrade-target",
			Announce: fmt.Sprintf("Installing %s (%s) ..",
				cfg.Downgrade.Package, cfg.Downgrade.Version),
			Policy: Fatal,
			Run: func(ctx context.Context) error {
				spec := fmt.Sprintf("%s==%s", cfg.Downgrade.Package, cfg.Downgrade.Version)
				return pipClient.Install(ctx, pip.InstallOptions{
					Quiet:    true,
					Packages: []string{spec},
				})
			},
		},
		Step{
			Name:     "remove-unrelated-package",
			Announce: fmt.Sprintf("Removing %s ..", cfg.Remove.Package),
			Policy:   Tolerant,
			Run: func(ctx context.Context) error {
				return pipClient.Uninstall(ctx, cfg.Remove.Package)
			},
		},
	)

	return steps
}

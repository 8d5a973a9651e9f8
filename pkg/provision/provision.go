// Package provision implements the ordered, fail-fast provisioning
// sequence that prepares a Python test environment. Steps run strictly
// one after another; the first fatal failure aborts the run with no
// retries and no rollback, leaving cleanup to the invoking CI harness.
package provision

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/prepenv/pkg/errors"
	"github.com/arthur-debert/prepenv/pkg/logging"
	"github.com/arthur-debert/prepenv/pkg/output"
)

// Policy declares what a step's failure does to the run
type Policy int

const (
	// Fatal aborts the whole run on failure
	Fatal Policy = iota

	// Tolerant swallows failure; the run continues and still succeeds
	Tolerant
)

// Step is one ordered unit of work in the provisioning sequence
type Step struct {
	// Name identifies the step in logs and errors
	Name string

	// Announce is the progress line printed before the step runs
	Announce string

	// Policy decides whether a failure aborts the run
	Policy Policy

	// Run performs the step's work
	Run func(ctx context.Context) error
}

// Options configures a Provisioner.
type Options struct {
	Steps     []Step
	Announcer *output.Announcer
	DryRun    bool

	// Logger overrides the package's component logger when non-nil
	Logger *zerolog.Logger
}

// Provisioner executes a fixed sequence of steps
type Provisioner struct {
	steps     []Step
	announcer *output.Announcer
	dryRun    bool
	logger    zerolog.Logger
}

// New creates a Provisioner.
func New(opts Options) *Provisioner {
	var logger zerolog.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = logging.GetLogger("provision")
	}

	return &Provisioner{
		steps:     opts.Steps,
		announcer: opts.Announcer,
		dryRun:    opts.DryRun,
		logger:    logger,
	}
}

// Run executes every step in order. It returns the first fatal
// failure; tolerant failures are logged and discarded.
func (p *Provisioner) Run(ctx context.Context) error {
	for _, step := range p.steps {
		if err := p.runStep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provisioner) runStep(ctx context.Context, step Step) error {
	start := time.Now()

	if step.Announce != "" && p.announcer != nil {
		p.announcer.Step("%s", step.Announce)
	}

	p.logger.Debug().
		Str("step", step.Name).
		Bool("dry_run", p.dryRun).
		Msg("Executing step")

	if p.dryRun {
		return nil
	}

	err := step.Run(ctx)
	if err != nil {
		if step.Policy == Tolerant {
			// Expected for e.g. uninstalling an absent package
			p.logger.Debug().
				Err(err).
				Str("step", step.Name).
				Msg("Tolerant step failed, continuing")
			return nil
		}

		p.logger.Error().
			Err(err).
			Str("step", step.Name).
			Msg("Step failed")
		return errors.Wrapf(err, errors.ErrStepFailed, "step %s failed", step.Name)
	}

	p.logger.Info().
		Str("step", step.Name).
		Dur("duration", time.Since(start)).
		Msg("Step completed")
	return nil
}

// Package cli wires prepenv's cobra commands.
package cli

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/prepenv/internal/version"
	"github.com/arthur-debert/prepenv/pkg/command"
	"github.com/arthur-debert/prepenv/pkg/config"
	"github.com/arthur-debert/prepenv/pkg/logging"
	"github.com/arthur-debert/prepenv/pkg/output"
	"github.com/arthur-debert/prepenv/pkg/pip"
	"github.com/arthur-debert/prepenv/pkg/provision"
	"github.com/arthur-debert/prepenv/pkg/workingcopy"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		dryRun    bool
		devMode   bool
		cfgFile   string
	)

	rootCmd := &cobra.Command{
		Use:   "prepenv",
		Short: "Prepare a Python test environment",
		Long: `prepenv prepares a Python test environment for the project in the
current directory: it installs the project's dependencies, installs the
project itself in editable mode, installs test dependencies, optionally
installs local working copies of sibling projects, pins one package for
a downgrade test and removes one unrelated package.

Steps run in a fixed order and the first failure aborts the run; only
the final removal is best-effort.`,
		Version: version.Version,
		// Stray arguments from CI drivers are accepted and ignored
		Args: cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd, cfgFile, dryRun, devMode)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Announce steps without executing them")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Install working copies of sibling projects")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is ./prepenv.toml)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenConfigCmd())

	return rootCmd
}

// runProvision resolves configuration and executes the provisioning
// sequence.
func runProvision(cmd *cobra.Command, cfgFile string, dryRun, devFlag bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	hostname, _ := os.Hostname()
	developerMode := devFlag || cfg.DeveloperMode(hostname)

	runner := command.NewOSRunner()
	pipClient := pip.New(cfg.Pip.Executable, runner)

	var copies *workingcopy.Installer
	if developerMode {
		root, err := cfg.ExpandedProjectsRoot()
		if err != nil {
			return err
		}
		copies = workingcopy.New(workingcopy.Options{
			Root:     root,
			Projects: cfg.Developer.Projects,
			Python:   cfg.Pip.Python,
			Pip:      pipClient,
			Runner:   runner,
		})
	}

	steps := provision.BuildSteps(provision.StepsOptions{
		Config:        cfg,
		Pip:           pipClient,
		WorkingCopies: copies,
		DeveloperMode: developerMode,
	})

	logger := logging.GetLogger("provision")
	p := provision.New(provision.Options{
		Steps:     steps,
		Announcer: output.NewAnnouncer(os.Stderr),
		DryRun:    dryRun,
		Logger:    &logger,
	})

	return p.Run(cmd.Context())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("prepenv version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "gen-config",
		Short: "Print the default configuration",
		Long: `Print the default configuration as TOML. With --effective, print the
resolved configuration after applying the config file and environment
overrides instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !effective {
				fmt.Fprint(cmd.OutOrStdout(), config.DefaultTOML())
				return nil
			}

			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			data, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, "Print the resolved configuration")

	return cmd
}

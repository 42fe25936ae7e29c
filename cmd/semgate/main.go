package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coopersmall/semgate/internal/git"
	"github.com/coopersmall/semgate/internal/workspace"
)

var (
	flagRef     string
	flagNoColor bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "semgate",
	Short: "Semantic-version gate for multi-package workspaces",
	Long: `semgate governs version bumps across a multi-package workspace at push
time, using git history as the source of truth.

For every package that changed relative to the reference branch it decides
whether a version bump occurred, classifies it (major/minor/patch), checks
that major and minor bumps are deliberate and isolated, and synthesizes an
automatic patch bump when no human bump is found. All staged manifest edits
land in one atomic commit; a policy violation blocks the push.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRef, "ref", "", "reference branch to compare against (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// gateEnv bundles the per-invocation collaborators every subcommand needs.
type gateEnv struct {
	scm    *git.Git
	cfg    workspace.Config
	logger *log.Logger
}

// setup resolves the repository, loads configuration, and applies the
// global flags. Called at the top of every subcommand.
func setup(ctx context.Context) (*gateEnv, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	scm, err := git.New(ctx, cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := workspace.Load(scm.RepoPath())
	if err != nil {
		return nil, err
	}
	if flagRef != "" {
		cfg.ReferenceBranch = flagRef
	}
	if flagNoColor || cfg.NoColor {
		color.NoColor = true
	}

	logger := log.New(os.Stderr)
	if flagVerbose || cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	return &gateEnv{scm: scm, cfg: cfg, logger: logger}, nil
}

// fail prints the error and exits non-zero.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coopersmall/semgate/internal/policy"
	"github.com/coopersmall/semgate/internal/release"
)

var runOnly []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Validate version bumps and auto-commit missing patch bumps",
	Long: `Scan every configured package (and the workspace aggregate) against the
reference branch. Packages with source changes must carry a valid version
bump; packages without one receive an automatic patch bump, committed in a
single governance commit.

Exit codes:
  0 - All packages clean (possibly after an automatic commit)
  1 - Policy violation or malformed manifest; the push should be blocked

Example:
  semgate run
  semgate run --ref develop
  semgate run --only utils,domain`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		env, err := setup(ctx)
		if err != nil {
			fail(err)
		}

		result, err := executeGate(ctx, env, false)
		if err != nil {
			reportGateFailure(err)
			os.Exit(1)
		}

		printResult(result)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runOnly, "only", nil, "restrict the scan to the named packages")
	rootCmd.AddCommand(runCmd)
}

// executeGate builds and runs the orchestrator for the selected packages.
func executeGate(ctx context.Context, env *gateEnv, dryRun bool) (*release.Result, error) {
	selected, err := env.cfg.Select(runOnly)
	if err != nil {
		return nil, err
	}

	orch, err := release.New(env.scm, release.Config{
		ReferenceBranch: env.cfg.ReferenceBranch,
		Descriptors:     release.Descriptors(env.cfg, selected),
		DryRun:          dryRun,
		Logger:          env.logger,
	})
	if err != nil {
		return nil, err
	}
	return orch.Run(ctx)
}

// reportGateFailure prints a policy violation with remediation guidance,
// or a plain error for infrastructure failures.
func reportGateFailure(err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	var violation *policy.Violation
	if !errors.As(err, &violation) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(os.Stderr, "\n%s %v\n", red("Push blocked:"), violation)
	if errors.Is(err, policy.ErrVersionRegression) {
		fmt.Fprintf(os.Stderr, "%s\n", yellow("Hint: the manifest version moved backwards; restore it to at least the reference version."))
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", yellow("Hint: amend the branch so the version bump is a single commit touching only the manifest, then push again."))
	}
}

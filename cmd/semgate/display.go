package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/coopersmall/semgate/internal/release"
)

// printResult renders the human-readable summary of one gate run.
func printResult(result *release.Result) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("=== Version Gate ==="))
	fmt.Printf("Branch:    %s\n", result.Branch)
	fmt.Printf("Reference: %s", result.ReferenceBranch)
	if result.Bootstrap {
		fmt.Printf(" %s", yellow("(not found; bootstrap mode)"))
	}
	fmt.Printf("\n\n")

	for _, outcome := range result.Outcomes {
		switch outcome.Status {
		case release.StatusSkipped:
			fmt.Printf("  %s %-12s %s\n", gray("○"), outcome.Package, gray("no changes"))
		case release.StatusNoChange:
			fmt.Printf("  %s %-12s %s (version already ahead)\n", green("●"), outcome.Package, outcome.CurrentText)
		case release.StatusManualBump:
			fmt.Printf("  %s %-12s %s (%s bump validated)\n", green("●"), outcome.Package, outcome.CurrentText, outcome.Class)
		case release.StatusAutoBump:
			fmt.Printf("  %s %-12s %s -> %s (auto patch)\n", yellow("▲"), outcome.Package, outcome.CurrentText, outcome.NewText)
		}
	}
	fmt.Println()

	switch {
	case result.DryRun && len(result.Bumped()) > 0:
		fmt.Printf("%s %d patch bump(s) would be committed\n", yellow("▲"), len(result.Bumped()))
	case result.Committed:
		fmt.Printf("%s Committed %d patch bump(s) in %s\n", green("✓"), len(result.Bumped()), result.CommitHash[:8])
	default:
		fmt.Printf("%s Nothing to do\n", green("✓"))
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coopersmall/semgate/internal/git"
	"github.com/coopersmall/semgate/internal/manifest"
	"github.com/coopersmall/semgate/internal/workspace"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment the gate depends on",
	Long: `Run health checks for common configuration and environment issues:
git availability, repository presence, config validity, manifest parse
errors, and reference branch resolution.

Exit codes:
  0 - All checks passed
  1 - One or more checks failed`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Printf("Running semgate health checks...\n\n")
		failed := false

		fmt.Printf("%s git availability\n", cyan("→"))
		if _, err := exec.LookPath("git"); err != nil {
			fmt.Printf("  %s git not found in PATH\n", red("✗"))
			fmt.Printf("\n%s Checks failed\n", red("✗"))
			os.Exit(1)
		}
		fmt.Printf("  %s git found\n", green("✓"))

		fmt.Printf("%s repository\n", cyan("→"))
		cwd, err := os.Getwd()
		if err != nil {
			fail(err)
		}
		scm, err := git.New(ctx, cwd)
		if err != nil {
			fmt.Printf("  %s not inside a git repository\n", red("✗"))
			fmt.Printf("\n%s Checks failed\n", red("✗"))
			os.Exit(1)
		}
		fmt.Printf("  %s repository root: %s\n", green("✓"), scm.RepoPath())

		fmt.Printf("%s configuration\n", cyan("→"))
		cfg, err := workspace.Load(scm.RepoPath())
		if err != nil {
			fmt.Printf("  %s %v\n", red("✗"), err)
			fmt.Printf("\n%s Checks failed\n", red("✗"))
			os.Exit(1)
		}
		fmt.Printf("  %s %d package(s), reference branch %q\n", green("✓"), len(cfg.Packages), cfg.ReferenceBranch)

		fmt.Printf("%s manifests\n", cyan("→"))
		for _, pkg := range cfg.Packages {
			if _, err := manifest.Load(filepath.Join(scm.RepoPath(), pkg.Manifest)); err != nil {
				failed = true
				fmt.Printf("  %s %s: %v\n", red("✗"), pkg.Name, err)
				continue
			}
			fmt.Printf("  %s %s\n", green("✓"), pkg.Name)
		}
		if _, err := manifest.Load(filepath.Join(scm.RepoPath(), cfg.WorkspaceManifest)); err != nil {
			failed = true
			fmt.Printf("  %s %s: %v\n", red("✗"), workspace.AggregateName, err)
		} else {
			fmt.Printf("  %s %s\n", green("✓"), workspace.AggregateName)
		}

		fmt.Printf("%s reference branch\n", cyan("→"))
		if scm.RefExists(ctx, cfg.ReferenceBranch) {
			fmt.Printf("  %s %q resolves\n", green("✓"), cfg.ReferenceBranch)
		} else {
			fmt.Printf("  %s %q not found; next run will bootstrap-bump every package\n", yellow("⚠"), cfg.ReferenceBranch)
		}

		if failed {
			fmt.Printf("\n%s Checks failed\n", red("✗"))
			os.Exit(1)
		}
		fmt.Printf("\n%s All checks passed\n", green("✓"))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

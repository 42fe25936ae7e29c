package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coopersmall/semgate/internal/git"
	"github.com/coopersmall/semgate/internal/manifest"
	"github.com/coopersmall/semgate/internal/release"
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List configured packages with current and reference versions",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		env, err := setup(ctx)
		if err != nil {
			fail(err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		mergeBase := ""
		if env.scm.RefExists(ctx, env.cfg.ReferenceBranch) {
			mergeBase, err = env.scm.MergeBase(ctx, env.cfg.ReferenceBranch, "HEAD")
			if err != nil {
				fail(err)
			}
		}

		fmt.Printf("\n%s\n\n", cyan("=== Packages ==="))
		fmt.Printf("  %-12s %-10s %-10s %s\n", "PACKAGE", "CURRENT", "REFERENCE", "STATE")

		detector := release.NewDetector(env.scm)
		for _, desc := range release.Descriptors(env.cfg, env.cfg.Packages) {
			m, err := manifest.Load(filepath.Join(env.scm.RepoPath(), desc.Manifest))
			if err != nil {
				fmt.Printf("  %-12s %s\n", desc.Name, yellow(fmt.Sprintf("unreadable manifest: %v", err)))
				continue
			}

			refText := gray("-")
			state := yellow("bootstrap")
			if mergeBase != "" {
				refText = referenceVersion(ctx, env, mergeBase, desc.Manifest)

				changed, err := detector.HasChanges(ctx, mergeBase, desc)
				if err != nil {
					fail(err)
				}
				if changed {
					state = yellow("changed")
				} else {
					state = green("clean")
				}
			}

			fmt.Printf("  %-12s %-10s %-10s %s\n", desc.Name, m.Version, refText, state)
		}
		fmt.Println()
	},
}

// referenceVersion renders the version a manifest declared at the
// merge-base, or "-" for packages new on this branch.
func referenceVersion(ctx context.Context, env *gateEnv, mergeBase, manifestPath string) string {
	data, err := env.scm.ShowFile(ctx, mergeBase, manifestPath)
	if errors.Is(err, git.ErrFileNotAtRef) {
		return "-"
	}
	if err != nil {
		return "?"
	}
	m, err := manifest.Parse(manifestPath, data)
	if err != nil {
		return "?"
	}
	return m.Version.String()
}

func init() {
	rootCmd.AddCommand(packagesCmd)
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var planFormat string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what run would do without writing anything",
	Long: `Perform the full scan (detect, classify, validate) but write no files and
create no commit. Useful before pushing, or from CI to preview the gate.

Example:
  semgate plan
  semgate plan --format yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		env, err := setup(ctx)
		if err != nil {
			fail(err)
		}

		result, err := executeGate(ctx, env, true)
		if err != nil {
			reportGateFailure(err)
			os.Exit(1)
		}

		switch planFormat {
		case "yaml":
			out, err := yaml.Marshal(result)
			if err != nil {
				fail(fmt.Errorf("encoding report: %w", err))
			}
			fmt.Print(string(out))
		case "text":
			printResult(result)
		default:
			fail(fmt.Errorf("unknown format %q (want text or yaml)", planFormat))
		}
	},
}

func init() {
	planCmd.Flags().StringVar(&planFormat, "format", "text", "output format: text or yaml")
	planCmd.Flags().StringSliceVar(&runOnly, "only", nil, "restrict the scan to the named packages")
	rootCmd.AddCommand(planCmd)
}

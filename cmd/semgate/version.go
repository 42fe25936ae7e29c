package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the semgate release version, overridable at build time via
// -ldflags "-X main.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the semgate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("semgate %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

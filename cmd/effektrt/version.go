package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serkm/effekt/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("effektrt %s\n", version.Version)
		if version.GitCommit != "" {
			fmt.Printf("commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Printf("built:  %s\n", version.BuildDate)
		}
	},
}

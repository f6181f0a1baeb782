package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/serkm/effekt/internal/progs"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered programs",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupColor(cmd)
		nameStyle := color.New(color.FgCyan, color.Bold)
		for _, p := range progs.All() {
			name := runewidth.FillRight(p.Name, 12)
			fmt.Printf("  %s %s\n", nameStyle.Sprint(name), p.Desc)
		}
		return nil
	},
}

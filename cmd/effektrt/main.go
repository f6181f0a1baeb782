package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/serkm/effekt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "effektrt",
	Short: "Effekt runtime harness",
	Long:  `effektrt runs compiled-program fixtures on the effect-handler runtime and inspects its behavior`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to runtime.toml (default: search upward from cwd)")
	rootCmd.PersistentFlags().String("trace", "", "trace level (off|run|control|debug), overrides config")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupColor applies the --color flag before any styled output.
func setupColor(cmd *cobra.Command) {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/serkm/effekt/internal/progs"
)

var statCmd = &cobra.Command{
	Use:   "stat <program>",
	Short: "Run a program and print its allocator statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

func init() {
	statCmd.Flags().Bool("quiet", false, "discard the program's own output")
}

func runStat(cmd *cobra.Command, args []string) error {
	s, err := loadSetup(cmd)
	if err != nil {
		return err
	}
	defer s.tracer.Close()

	p, ok := progs.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown program %q; see `effektrt list`", args[0])
	}

	var out io.Writer = os.Stdout
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		out = io.Discard
	}
	o := executeProgram(s, p, out, nil, false)
	if o.fault != nil {
		fmt.Fprint(os.Stderr, color.RedString(o.fault.Format()))
		return fmt.Errorf("%s faulted", p.Name)
	}

	fmt.Printf("%s %s = %d\n\n", color.GreenString("ok"), p.Name, o.value)
	statLine("max meta-stack depth", o.depth, -1)
	statLine("continuation clones", int(o.delta.Clones), -1)
	statLine("prompts minted", int(o.delta.Prompts), -1)
	statLine("heap objects", int(o.delta.ObjectAllocs), int(o.delta.ObjectFrees))
	statLine("segments", int(o.delta.SegmentAllocs), int(o.delta.SegmentFrees))
	statLine("stack nodes", int(o.delta.NodeAllocs), int(o.delta.NodeFrees))
	statLine("arenas", int(o.delta.ArenaAllocs), int(o.delta.ArenaFrees))
	return nil
}

// statLine prints one aligned row; freed < 0 means the row has no
// alloc/free pairing.
func statLine(label string, n, freed int) {
	padded := runewidth.FillRight(label, 22)
	if freed < 0 {
		fmt.Printf("  %s %d\n", padded, n)
		return
	}
	fmt.Printf("  %s %d allocated / %d freed\n", padded, n, freed)
}

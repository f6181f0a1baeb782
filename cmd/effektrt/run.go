package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/serkm/effekt/internal/progs"
	"github.com/serkm/effekt/internal/replay"
	"github.com/serkm/effekt/internal/rts"
	"github.com/serkm/effekt/internal/trace"
)

var runCmd = &cobra.Command{
	Use:   "run [program]",
	Short: "Run a registered program on the runtime",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Bool("all", false, "run every registered program")
	runCmd.Flags().Bool("ui", false, "render live progress (with --all)")
	runCmd.Flags().Bool("exec-trace", false, "write the runtime's execution trace to stderr")
	runCmd.Flags().String("replay-out", "", "record the event stream to a log file")
	runCmd.Flags().String("replay", "", "verify the event stream against a recorded log")
}

// traceSink forwards machine events into the structured tracer.
type traceSink struct {
	t trace.Tracer
}

func (s traceSink) Record(op string, a, b int64) {
	trace.Point(s.t, trace.ScopeControl, op, a, b)
}

// multiSink fans events out to several sinks.
type multiSink []rts.EventSink

func (m multiSink) Record(op string, a, b int64) {
	for _, s := range m {
		s.Record(op, a, b)
	}
}

type runOutcome struct {
	name  string
	value int64
	fault *rts.RTError
	depth int
	delta rts.Stats
}

// executeProgram runs one program on a fresh machine.
func executeProgram(s *setup, p progs.Program, out io.Writer, sink rts.EventSink, execTrace bool) runOutcome {
	done := trace.Span(s.tracer, trace.ScopeRun, "run:"+p.Name)
	defer done()

	opts := rts.Options{
		Out:       out,
		Sink:      sink,
		LeakCheck: s.cfg.Runtime.LeakCheck,
	}
	if execTrace {
		opts.Trace = rts.NewTracer(os.Stderr)
	}
	m := rts.NewMachine(opts)
	v, err := m.Run(p.Make())

	outcome := runOutcome{name: p.Name, depth: m.MaxDepth(), delta: m.Delta, fault: err}
	if err == nil {
		outcome.value = v.AsInt()
	} else {
		trace.Point(s.tracer, trace.ScopeRun, "fault:"+p.Name, int64(err.Code), 0)
	}
	return outcome
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := loadSetup(cmd)
	if err != nil {
		return err
	}
	defer s.tracer.Close()

	all, _ := cmd.Flags().GetBool("all")
	if all {
		return runAll(cmd, s)
	}
	if len(args) != 1 {
		return fmt.Errorf("specify a program name or --all; see `effektrt list`")
	}
	p, ok := progs.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown program %q; see `effektrt list`", args[0])
	}

	execTrace, _ := cmd.Flags().GetBool("exec-trace")
	sinks := multiSink{}
	if s.tracer.Enabled() {
		sinks = append(sinks, traceSink{t: s.tracer})
	}

	recordPath, _ := cmd.Flags().GetString("replay-out")
	var recorder *replay.Recorder
	var recordFile *os.File
	if recordPath != "" {
		recordFile, err = os.Create(recordPath)
		if err != nil {
			return fmt.Errorf("create replay log: %w", err)
		}
		defer recordFile.Close()
		recorder, err = replay.NewRecorder(recordFile, p.Name)
		if err != nil {
			return err
		}
		sinks = append(sinks, recorder)
	}

	verifyPath, _ := cmd.Flags().GetString("replay")
	var verifyLog *replay.Log
	var verifySink *replay.MemorySink
	if verifyPath != "" {
		verifyLog, err = replay.LoadFile(verifyPath)
		if err != nil {
			return err
		}
		if verifyLog.Header.Program != p.Name {
			return fmt.Errorf("replay log is for %q, not %q", verifyLog.Header.Program, p.Name)
		}
		verifySink = &replay.MemorySink{}
		sinks = append(sinks, verifySink)
	}

	var sink rts.EventSink
	if len(sinks) > 0 {
		sink = sinks
	}
	outcome := executeProgram(s, p, os.Stdout, sink, execTrace)

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return fmt.Errorf("finish replay log: %w", err)
		}
	}
	if outcome.fault != nil {
		fmt.Fprint(os.Stderr, color.RedString(outcome.fault.Format()))
		return fmt.Errorf("%s faulted", p.Name)
	}
	if verifyLog != nil {
		if err := verifyLog.Verify(verifySink.Events); err != nil {
			return err
		}
		fmt.Printf("%s %s: %d events match\n", color.GreenString("replay ok"), p.Name, len(verifySink.Events))
	}
	fmt.Printf("%s %s = %d\n", color.GreenString("ok"), p.Name, outcome.value)
	return nil
}

// runAll executes every registered program concurrently, each on its own
// machine. Machines share no state beyond the process-wide counters.
func runAll(cmd *cobra.Command, s *setup) error {
	withUI, _ := cmd.Flags().GetBool("ui")
	programs := progs.All()
	outcomes := make([]runOutcome, len(programs))

	if withUI && isTerminal(os.Stdout) {
		return runAllWithUI(s, programs, outcomes)
	}

	var g errgroup.Group
	for i, p := range programs {
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = executeProgram(s, p, io.Discard, nil, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.fault != nil {
			failed++
			fmt.Printf("%s %s: %v\n", color.RedString("failed"), o.name, o.fault)
			continue
		}
		fmt.Printf("%s %s = %d\n", color.GreenString("ok"), o.name, o.value)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d programs faulted", failed, len(programs))
	}
	return nil
}

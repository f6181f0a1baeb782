package rts

import (
	"bytes"
	"strings"
	"testing"
)

// constProgram returns a negative value whose entry immediately returns n.
func constProgram(n int64) Neg {
	return Neg{VTable: VTable{
		func(self Neg, evidence int64, st *Stack, args ...Value) Step {
			return Return(MakeInt(n), st)
		},
	}}
}

func TestRunConstProgram(t *testing.T) {
	m := NewMachine(Options{LeakCheck: true})
	v, err := m.Run(constProgram(42))
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if got := v.AsInt(); got != 42 {
		t.Fatalf("result = %d, want 42", got)
	}
}

func TestRunIntThreadsArgument(t *testing.T) {
	double := Neg{VTable: VTable{
		func(self Neg, evidence int64, st *Stack, args ...Value) Step {
			return Return(MakeInt(args[0].AsInt()*2), st)
		},
	}}
	m := NewMachine(Options{LeakCheck: true})
	v, err := m.RunInt(double, 21)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if got := v.AsInt(); got != 42 {
		t.Fatalf("result = %d, want 42", got)
	}
}

func TestRunPosReadsTag(t *testing.T) {
	tagOf := Neg{VTable: VTable{
		func(self Neg, evidence int64, st *Stack, args ...Value) Step {
			p := args[0].AsPos()
			return Return(MakeInt(p.Tag), st)
		},
	}}
	m := NewMachine(Options{LeakCheck: true})
	v, err := m.RunPos(tagOf, Pos{Tag: 7})
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if got := v.AsInt(); got != 7 {
		t.Fatalf("result = %d, want 7", got)
	}
}

func TestRunLeavesNoGarbage(t *testing.T) {
	// S6: the run tears down the program and global nodes; every
	// allocation is paired with a free.
	m := NewMachine(Options{})
	before := ReadStats()
	if _, err := m.Run(constProgram(0)); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	delta := ReadStats().Sub(before)
	if !delta.Balanced() {
		t.Fatalf("run leaked: %+v", delta)
	}
	if delta.NodeAllocs != 2 || delta.NodeFrees != 2 {
		t.Fatalf("node balance %d/%d, want 2/2", delta.NodeAllocs, delta.NodeFrees)
	}
}

func TestRunFaultSurfacesAsError(t *testing.T) {
	bad := Neg{VTable: VTable{
		func(self Neg, evidence int64, st *Stack, args ...Value) Step {
			prefix, _ := Shift(st, Prompt(1<<40))
			_ = prefix
			return nil
		},
	}}
	m := NewMachine(Options{})
	_, err := m.Run(bad)
	if err == nil {
		t.Fatalf("expected fault, got none")
	}
	if err.Code != FaultNoSuchPrompt {
		t.Fatalf("fault code = %s, want %s", err.Code, FaultNoSuchPrompt)
	}
	if len(err.Backtrace) == 0 {
		t.Fatalf("fault carries no backtrace")
	}
}

func TestExitTearsDownCleanly(t *testing.T) {
	quitter := Neg{VTable: VTable{
		func(self Neg, evidence int64, st *Stack, args ...Value) Step {
			st = Reset(st)
			return Exit(st, 3)
		},
	}}
	m := NewMachine(Options{LeakCheck: true})
	v, err := m.Run(quitter)
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if got := v.AsInt(); got != 3 {
		t.Fatalf("exit code = %d, want 3", got)
	}
}

func TestPrintWritesToMachineOutput(t *testing.T) {
	printer := Neg{VTable: VTable{
		func(self Neg, evidence int64, st *Stack, args ...Value) Step {
			Print(st, 123)
			return Return(MakeInt(0), st)
		},
	}}
	var out bytes.Buffer
	m := NewMachine(Options{Out: &out, LeakCheck: true})
	if _, err := m.Run(printer); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if got := out.String(); got != "123\n" {
		t.Fatalf("output = %q, want %q", got, "123\n")
	}
}

func TestTracerRecordsControlFlow(t *testing.T) {
	prog := Neg{VTable: VTable{
		func(self Neg, evidence int64, st *Stack, args ...Value) Step {
			st = Reset(st)
			return Return(MakeInt(0), st)
		},
	}}
	var out bytes.Buffer
	m := NewMachine(Options{Trace: NewTracer(&out)})
	if _, err := m.Run(prog); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	text := out.String()
	for _, want := range []string{"reset", "underflow", "exit"} {
		if !strings.Contains(text, want) {
			t.Errorf("trace missing %q:\n%s", want, text)
		}
	}
}

func TestMaxDepthTracksResets(t *testing.T) {
	prog := Neg{VTable: VTable{
		func(self Neg, evidence int64, st *Stack, args ...Value) Step {
			st = Reset(Reset(Reset(st)))
			return Return(MakeInt(0), st)
		},
	}}
	m := NewMachine(Options{})
	if _, err := m.Run(prog); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if got := m.MaxDepth(); got != 5 {
		t.Fatalf("max depth = %d, want 5 (global+program+3 resets)", got)
	}
}

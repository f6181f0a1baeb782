package rts

import (
	"fmt"
	"io"
	"os"
)

// EventSink receives the machine's observable event stream: control
// transfers, prints, and exit. The replay recorder implements this.
type EventSink interface {
	Record(op string, a, b int64)
}

// Options configures a machine.
type Options struct {
	Out       io.Writer // print target; os.Stdout when nil
	Trace     *Tracer   // textual execution trace, nil to disable
	Sink      EventSink // event stream, nil to disable
	LeakCheck bool      // verify allocator balance after a clean run
}

// Machine drives one program: it owns the meta-stack top, the trampoline
// loop, and the result mailbox. A machine is single-threaded; run several
// machines on separate goroutines if concurrency is wanted.
type Machine struct {
	Out       io.Writer
	Trace     *Tracer
	Sink      EventSink
	LeakCheck bool

	top      *Stack
	nodes    int
	maxNodes int
	result   Value
	done     bool

	// Delta is the allocator balance over the last run.
	Delta Stats
}

// NewMachine creates a machine with the given options.
func NewMachine(opts Options) *Machine {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Machine{
		Out:       out,
		Trace:     opts.Trace,
		Sink:      opts.Sink,
		LeakCheck: opts.LeakCheck,
	}
}

// MaxDepth returns the deepest meta-stack observed during the last run.
func (m *Machine) MaxDepth() int {
	return m.maxNodes
}

// adjust records a new meta-stack top and the node-count delta of the
// operation that produced it.
func (m *Machine) adjust(top *Stack, delta int) {
	m.top = top
	m.nodes += delta
	if m.nodes > m.maxNodes {
		m.maxNodes = m.nodes
	}
}

func (m *Machine) emit(op string, a, b int64) {
	if m.Sink != nil {
		m.Sink.Record(op, a, b)
	}
	m.Trace.Control(op, a, b, m.nodes)
}

// WithEmptyStack builds the initial meta-stack: a global base node under a
// program node with a fresh prompt, the program node carrying the topLevel
// sentinel frame. Returns the program node.
func (m *Machine) WithEmptyStack() *Stack {
	global := newNode(m, GlobalPrompt)
	prog := newNode(m, FreshPrompt())
	prog.rest = global
	PushFrame(prog, FrameHeader{Ret: m.topLevel, Sharer: sentinelWalker, Eraser: sentinelWalker})
	m.nodes = 0
	m.maxNodes = 0
	m.adjust(prog, 2)
	return prog
}

// topLevel is the return address of the program's outermost frame: tear
// down the program and global nodes, check that nothing is left, and park
// the result.
func (m *Machine) topLevel(v Value, st *Stack) Step {
	next := UnderflowStack(st)
	last := UnderflowStack(next)
	if last != nil {
		failAt(last, FaultCorruptStack, "meta-stack not empty under the global node")
	}
	m.result = v
	m.done = true
	if v.Kind == VKInt {
		m.emit("exit", v.Int, 0)
	} else {
		m.emit("exit", 0, 0)
	}
	return nil
}

// drive runs the trampoline to completion.
func (m *Machine) drive(s Step) {
	for s != nil {
		s = s()
	}
}

// runWith prepares an empty stack, hands it to start, and drives the
// machine until topLevel parks a result or a fault unwinds.
func (m *Machine) runWith(start func(st *Stack) Step) (v Value, err *RTError) {
	before := ReadStats()
	defer func() {
		m.Delta = ReadStats().Sub(before)
		if r := recover(); r != nil {
			rte, ok := r.(*RTError)
			if !ok {
				panic(r)
			}
			err = rte
		}
	}()
	st := m.WithEmptyStack()
	m.done = false
	m.drive(start(st))
	if !m.done {
		return Value{}, &RTError{Code: FaultCorruptStack, Message: "machine stopped before top level"}
	}
	if m.LeakCheck && !m.result.IsHeap() {
		delta := ReadStats().Sub(before)
		if !delta.Balanced() {
			return m.result, &RTError{
				Code: FaultHeapLeak,
				Message: fmt.Sprintf(
					"allocator imbalance: objects %d/%d segments %d/%d nodes %d/%d arenas %d/%d",
					delta.ObjectAllocs, delta.ObjectFrees,
					delta.SegmentAllocs, delta.SegmentFrees,
					delta.NodeAllocs, delta.NodeFrees,
					delta.ArenaAllocs, delta.ArenaFrees),
			}
		}
	}
	return m.result, nil
}

// Run enters f through its first method with evidence 0 and no operands.
func (m *Machine) Run(f Neg) (Value, *RTError) {
	return m.runWith(func(st *Stack) Step {
		return f.VTable[0](f, 0, st)
	})
}

// RunInt enters f with a single integer operand.
func (m *Machine) RunInt(f Neg, x int64) (Value, *RTError) {
	return m.runWith(func(st *Stack) Step {
		return f.VTable[0](f, 0, st, MakeInt(x))
	})
}

// RunPos enters f with a single positive operand.
func (m *Machine) RunPos(f Neg, x Pos) (Value, *RTError) {
	return m.runWith(func(st *Stack) Step {
		return f.VTable[0](f, 0, st, MakePos(x))
	})
}

// Print writes one integer line to the machine's output.
func Print(st *Stack, n int64) {
	m := st.m
	if m == nil {
		fmt.Fprintln(os.Stdout, n)
		return
	}
	fmt.Fprintln(m.Out, n)
	m.emit("print", n, 0)
}

// Exit terminates the machine immediately with the given code, tearing
// down the live meta-stack so every held object is released.
func Exit(st *Stack, code int64) Step {
	m := st.m
	for n := st; n != nil; {
		EraseFrames(n.mem)
		next := n.rest
		freeNode(n)
		n = next
	}
	if m != nil {
		m.adjust(nil, -m.nodes)
		m.result = MakeInt(code)
		m.done = true
		m.emit("exit", code, 0)
	}
	return nil
}

// Package progs holds hand-written programs shaped like code-generator
// output: trampolined basic blocks threading an explicit stack through the
// runtime's calling convention. They are the runtime's integration
// fixtures and the CLI's demo registry.
package progs

import "github.com/serkm/effekt/internal/rts"

// Program is one registered demo program.
type Program struct {
	Name   string
	Desc   string
	Expect int64 // result the program must produce
	Make   func() rts.Neg
}

var programs = []Program{
	{Name: "countdown", Desc: "frame push/pop discipline over a counting loop", Expect: 55, Make: countdownProgram},
	{Name: "boxes", Desc: "heap-allocated cons cells, consumed and erased", Expect: 15, Make: boxesProgram},
	{Name: "state", Desc: "mutable cell captured and resumed twice", Expect: 21, Make: stateProgram},
	{Name: "choice", Desc: "multi-shot continuation run with two answers", Expect: 30, Make: choiceProgram},
	{Name: "exceptions", Desc: "abortive raise discarding a captured prefix", Expect: 5, Make: exceptionsProgram},
	{Name: "nested", Desc: "shift across two prompts with a live reference", Expect: 42, Make: nestedProgram},
}

// All returns the registered programs in display order.
func All() []Program {
	out := make([]Program, len(programs))
	copy(out, programs)
	return out
}

// Lookup finds a program by name.
func Lookup(name string) (Program, bool) {
	for _, p := range programs {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}

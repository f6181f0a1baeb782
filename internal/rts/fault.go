package rts

import (
	"fmt"
	"strings"
)

// FaultCode identifies the type of runtime fault.
type FaultCode int

// Stable fault codes - do not change values.
const (
	FaultNoSuchPrompt      FaultCode = 2001 // RT2001: shift target prompt not on the meta-stack
	FaultDanglingReference FaultCode = 2002 // RT2002: reference prompt not on the meta-stack
	FaultUseAfterFree      FaultCode = 2003 // RT2003: heap object used after its last erase
	FaultSegmentOverflow   FaultCode = 2004 // RT2004: segment reservation exhausted
	FaultCorruptFrame      FaultCode = 2005 // RT2005: missing or malformed frame header
	FaultTypeMismatch      FaultCode = 2006 // RT2006: value used at the wrong kind
	FaultHeapLeak          FaultCode = 2007 // RT2007: allocator balance nonzero at teardown
	FaultCorruptStack      FaultCode = 2008 // RT2008: meta-stack structure invariant violated
	FaultArenaOverflow     FaultCode = 2009 // RT2009: arena reservation exhausted, or prompt/offset too wide for a reference
)

// String returns the code as "RT2001" format.
func (c FaultCode) String() string {
	return fmt.Sprintf("RT%d", c)
}

// StackNote describes one meta-stack node in a fault backtrace.
type StackNote struct {
	Prompt Prompt
	Used   int // occupied slots in the node's segment
	Cells  int // live arena cells
}

// RTError is a fatal runtime fault. Faults indicate a code-generator bug or
// corrupted runtime state; the machine never recovers from one.
type RTError struct {
	Code      FaultCode
	Message   string
	Backtrace []StackNote // meta-stack nodes from top to bottom
}

// Error implements the error interface.
func (e *RTError) Error() string {
	return fmt.Sprintf("fault %s: %s", e.Code, e.Message)
}

// Format renders the fault with its meta-stack backtrace.
func (e *RTError) Format() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("fault %s: %s\n", e.Code, e.Message))
	if len(e.Backtrace) > 0 {
		sb.WriteString("meta-stack:\n")
		for i, n := range e.Backtrace {
			sb.WriteString(fmt.Sprintf("  %d: prompt#%d used=%d cells=%d\n", i, n.Prompt, n.Used, n.Cells))
		}
	}
	return sb.String()
}

// fail raises a fault with no meta-stack context.
func fail(code FaultCode, format string, args ...any) {
	panic(&RTError{Code: code, Message: fmt.Sprintf(format, args...)})
}

// failAt raises a fault carrying a backtrace of the meta-stack below st.
func failAt(st *Stack, code FaultCode, format string, args ...any) {
	e := &RTError{Code: code, Message: fmt.Sprintf(format, args...)}
	for n := st; n != nil; n = n.rest {
		note := StackNote{Prompt: n.prompt}
		if n.mem != nil {
			note.Used = n.mem.sp
		}
		if n.arena != nil {
			note.Cells = len(n.arena.cells)
		}
		e.Backtrace = append(e.Backtrace, note)
	}
	panic(e)
}

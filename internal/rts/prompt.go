package rts

import "sync/atomic"

// Prompt is a process-unique identifier naming a dynamic scope boundary.
// Prompt 0 names the global base node under every machine.
type Prompt int64

// GlobalPrompt is the prompt of the base node installed by WithEmptyStack.
const GlobalPrompt Prompt = 0

// promptCounter is the process-wide prompt source, shared like the
// allocator counters in stats.go. It is atomic so independent machines
// can run concurrently; within one
// machine ordering is the plain program order.
var promptCounter atomic.Int64

// FreshPrompt mints the next prompt. Prompts are strictly increasing for
// the lifetime of the process.
func FreshPrompt() Prompt {
	counters.prompts.Add(1)
	return Prompt(promptCounter.Add(1))
}

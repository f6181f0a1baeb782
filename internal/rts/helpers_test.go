package rts

import "testing"

// expectFault runs fn and asserts it raises a fault with the given code.
func expectFault(t *testing.T, code FaultCode, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected fault %s, got none", code)
		}
		rte, ok := r.(*RTError)
		if !ok {
			t.Fatalf("expected *RTError, got %v", r)
		}
		if rte.Code != code {
			t.Fatalf("expected fault %s, got %s (%s)", code, rte.Code, rte.Message)
		}
	}()
	fn()
}

// countingEraser returns an eraser that increments *n on every call.
func countingEraser(n *int) Eraser {
	return func(env []Value) {
		*n++
	}
}

// detachedNode builds a machine-less meta-stack node for unit tests.
func detachedNode(t *testing.T) *Stack {
	t.Helper()
	return newNode(nil, FreshPrompt())
}

package progs

import "github.com/serkm/effekt/internal/rts"

// countdown prints 10..1 and returns their sum. Each recursion level
// pushes a continuation frame holding the pending addend, so the return
// path pops its way back up through ten frames.
func countdownProgram() rts.Neg {
	return rts.Neg{VTable: rts.VTable{countdownEntry}}
}

func countdownEntry(self rts.Neg, evidence int64, st *rts.Stack, args ...rts.Value) rts.Step {
	return countdownLoop(10, st)
}

func countdownLoop(n int64, st *rts.Stack) rts.Step {
	if n == 0 {
		return rts.Return(rts.MakeInt(0), st)
	}
	rts.Print(st, n)
	rts.PushFrame(st,
		rts.FrameHeader{Ret: countdownRet, Sharer: rts.ShareWalker(1), Eraser: rts.EraseWalker(1)},
		rts.MakeInt(n))
	next := n - 1
	return func() rts.Step { return countdownLoop(next, st) }
}

func countdownRet(v rts.Value, st *rts.Stack) rts.Step {
	n := rts.PopValue(st).AsInt()
	return rts.Return(rts.MakeInt(v.AsInt()+n), st)
}

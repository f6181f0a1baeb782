package progs

import "github.com/serkm/effekt/internal/rts"

// nested installs two prompts, binds a cell holding 7 to the inner one,
// and shifts to the outer prompt from inside the inner: both nodes are
// captured. After the handler resumes with 35, the body's reference to
// the inner prompt must still resolve, yielding 35 + 7 = 42.
func nestedProgram() rts.Neg {
	return rts.Neg{VTable: rts.VTable{nestedEntry}}
}

func nestedEntry(self rts.Neg, evidence int64, st *rts.Stack, args ...rts.Value) rts.Step {
	st = rts.Reset(st)
	p1 := rts.CurrentPrompt(st)
	st = rts.Reset(st)
	r := rts.NewReference(st)
	*rts.GetVarPointer(r, st) = rts.MakeInt(7)

	rts.PushFrame(st,
		rts.FrameHeader{Ret: nestedBody, Sharer: rts.ShareWalker(1), Eraser: rts.EraseWalker(1)},
		rts.MakeRef(r))
	k, outer := rts.Shift(st, p1)

	rts.PushFrame(outer,
		rts.FrameHeader{Ret: nestedAfter, Sharer: rts.ShareWalker(0), Eraser: rts.EraseWalker(0)})
	top := rts.Resume(k, outer)
	return rts.Return(rts.MakeInt(35), top)
}

func nestedBody(v rts.Value, st *rts.Stack) rts.Step {
	r := rts.PopValue(st).AsRef()
	cell := rts.GetVarPointer(r, st)
	return rts.Return(rts.MakeInt(v.AsInt()+cell.AsInt()), st)
}

func nestedAfter(v rts.Value, st *rts.Stack) rts.Step {
	return rts.Return(v, st)
}

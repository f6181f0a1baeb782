package progs

import "github.com/serkm/effekt/internal/rts"

// choice runs one body under two different answers to the same effect:
// the body multiplies its answer by ten, the handler resumes with 1 and
// then 2, and the two runs are summed. 10 + 20 = 30.
func choiceProgram() rts.Neg {
	return rts.Neg{VTable: rts.VTable{choiceEntry}}
}

func choiceEntry(self rts.Neg, evidence int64, st *rts.Stack, args ...rts.Value) rts.Step {
	st = rts.Reset(st)
	p := rts.CurrentPrompt(st)
	rts.PushFrame(st,
		rts.FrameHeader{Ret: choiceBody, Sharer: rts.ShareWalker(0), Eraser: rts.EraseWalker(0)})
	k, outer := rts.Shift(st, p)

	rts.ShareStack(k)
	rts.PushFrame(outer,
		rts.FrameHeader{Ret: choiceAfterA, Sharer: rts.ShareWalker(1, 0), Eraser: rts.EraseWalker(1, 0)},
		rts.MakeStack(k))
	top := rts.Resume(k, outer)
	return rts.Return(rts.MakeInt(1), top)
}

func choiceBody(v rts.Value, st *rts.Stack) rts.Step {
	return rts.Return(rts.MakeInt(v.AsInt()*10), st)
}

func choiceAfterA(v rts.Value, st *rts.Stack) rts.Step {
	k := rts.PopValue(st).AsStack()
	rts.PushFrame(st,
		rts.FrameHeader{Ret: choiceAfterB, Sharer: rts.ShareWalker(1), Eraser: rts.EraseWalker(1)},
		rts.MakeInt(v.AsInt()))
	top := rts.Resume(k, st)
	return rts.Return(rts.MakeInt(2), top)
}

func choiceAfterB(v rts.Value, st *rts.Stack) rts.Step {
	a := rts.PopValue(st).AsInt()
	return rts.Return(rts.MakeInt(a+v.AsInt()), st)
}

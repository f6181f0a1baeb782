package progs

import "github.com/serkm/effekt/internal/rts"

// exceptions runs the same descent twice. The first pass completes
// normally and sums the boxed payloads 1+2+3. The second pass raises at
// the bottom: the captured prefix, still holding three live boxes, is
// discarded with EraseStack, and the handler substitutes -1. The result
// is 6 + (-1) = 5; the leak check proves the discarded boxes were freed.
func exceptionsProgram() rts.Neg {
	return rts.Neg{VTable: rts.VTable{exceptionsEntry}}
}

func exceptionsEntry(self rts.Neg, evidence int64, st *rts.Stack, args ...rts.Value) rts.Step {
	rts.PushFrame(st,
		rts.FrameHeader{Ret: exceptionsAfterSafe, Sharer: rts.ShareWalker(0), Eraser: rts.EraseWalker(0)})
	return exceptionsDig(3, 0, false, st)
}

// exceptionsDig pushes one boxed frame per level. At the bottom it either
// returns 0 or raises to prompt p, aborting every frame above.
func exceptionsDig(n int64, p rts.Prompt, raise bool, st *rts.Stack) rts.Step {
	if n == 0 {
		if !raise {
			return rts.Return(rts.MakeInt(0), st)
		}
		k, outer := rts.Shift(st, p)
		rts.EraseStack(k)
		return rts.Return(rts.MakeInt(-1), outer)
	}
	box := rts.NewObject(rts.EraseFields, 1)
	rts.ObjectEnvironment(box)[0] = rts.MakeInt(n)
	rts.PushFrame(st,
		rts.FrameHeader{Ret: exceptionsRet, Sharer: rts.ShareWalker(1, 0), Eraser: rts.EraseWalker(1, 0)},
		rts.MakePos(rts.Pos{Tag: 1, Obj: box}))
	next := n - 1
	return func() rts.Step { return exceptionsDig(next, p, raise, st) }
}

// exceptionsRet adds the boxed payload on the way back up.
func exceptionsRet(v rts.Value, st *rts.Stack) rts.Step {
	box := rts.PopValue(st).AsPos()
	sum := v.AsInt() + rts.ObjectEnvironment(box.Obj)[0].AsInt()
	rts.ErasePositive(box)
	return rts.Return(rts.MakeInt(sum), st)
}

// exceptionsAfterSafe starts the raising pass under a fresh prompt,
// keeping the safe pass's sum in its frame.
func exceptionsAfterSafe(v rts.Value, st *rts.Stack) rts.Step {
	rts.PushFrame(st,
		rts.FrameHeader{Ret: exceptionsAfterRaise, Sharer: rts.ShareWalker(1), Eraser: rts.EraseWalker(1)},
		rts.MakeInt(v.AsInt()))
	st = rts.Reset(st)
	return exceptionsDig(3, rts.CurrentPrompt(st), true, st)
}

func exceptionsAfterRaise(v rts.Value, st *rts.Stack) rts.Step {
	safe := rts.PopValue(st).AsInt()
	return rts.Return(rts.MakeInt(safe+v.AsInt()), st)
}

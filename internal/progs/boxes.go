package progs

import "github.com/serkm/effekt/internal/rts"

// Constructor tags of the list type.
const (
	listNil  = 0
	listCons = 1
)

// boxes builds the list [1..5] out of heap cons cells, then consumes it,
// erasing each cell as its head is taken. The runtime's leak check proves
// every cell is returned to the allocator.
func boxesProgram() rts.Neg {
	return rts.Neg{VTable: rts.VTable{boxesEntry}}
}

func boxesEntry(self rts.Neg, evidence int64, st *rts.Stack, args ...rts.Value) rts.Step {
	return boxesSum(buildList(5), 0, st)
}

func buildList(n int64) rts.Pos {
	acc := rts.Pos{Tag: listNil}
	for i := n; i >= 1; i-- {
		cell := rts.NewObject(rts.EraseFields, 2)
		env := rts.ObjectEnvironment(cell)
		env[0] = rts.MakeInt(i)
		env[1] = rts.MakePos(acc)
		acc = rts.Pos{Tag: listCons, Obj: cell}
	}
	return acc
}

func boxesSum(xs rts.Pos, acc int64, st *rts.Stack) rts.Step {
	if xs.Tag == listNil {
		return rts.Return(rts.MakeInt(acc), st)
	}
	env := rts.ObjectEnvironment(xs.Obj)
	head := env[0].AsInt()
	tail := env[1].AsPos()
	// The tail must survive the cell's erase.
	rts.SharePositive(tail)
	rts.ErasePositive(xs)
	total := acc + head
	return func() rts.Step { return boxesSum(tail, total, st) }
}

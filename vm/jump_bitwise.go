package vm

import "math/big"

func opInvert(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Not(x))
}

// binaryIntOp pops x2 then x1 and pushes fn(x1, x2) with the width check
// applied.
func binaryIntOp(e *Engine, fn func(z, x, y *big.Int) *big.Int) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(fn(new(big.Int), x1, x2))
}

func opAnd(e *Engine, in *Instruction) error {
	return binaryIntOp(e, (*big.Int).And)
}

func opOr(e *Engine, in *Instruction) error {
	return binaryIntOp(e, (*big.Int).Or)
}

func opXor(e *Engine, in *Instruction) error {
	return binaryIntOp(e, (*big.Int).Xor)
}

func opEqual(e *Engine, in *Instruction) error {
	x2, err := e.Pop()
	if err != nil {
		return err
	}
	x1, err := e.Pop()
	if err != nil {
		return err
	}
	eq, err := ItemEquals(x1, x2, e.limits)
	if err != nil {
		return err
	}
	e.Push(Boolean(eq))
	return nil
}

func opNotEqual(e *Engine, in *Instruction) error {
	x2, err := e.Pop()
	if err != nil {
		return err
	}
	x1, err := e.Pop()
	if err != nil {
		return err
	}
	eq, err := ItemEquals(x1, x2, e.limits)
	if err != nil {
		return err
	}
	e.Push(Boolean(!eq))
	return nil
}

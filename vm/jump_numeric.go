package vm

import (
	"math/big"
)

var (
	bigOne = big.NewInt(1)
)

func opSign(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	e.Push(IntFromInt64(int64(x.Sign())))
	return nil
}

func opAbs(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Abs(x))
}

func opNegate(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Neg(x))
}

func opInc(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Add(x, bigOne))
}

func opDec(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Sub(x, bigOne))
}

func opAdd(e *Engine, in *Instruction) error {
	return binaryIntOp(e, (*big.Int).Add)
}

func opSub(e *Engine, in *Instruction) error {
	return binaryIntOp(e, (*big.Int).Sub)
}

func opMul(e *Engine, in *Instruction) error {
	return binaryIntOp(e, (*big.Int).Mul)
}

// opDiv divides truncating toward zero.
func opDiv(e *Engine, in *Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	if x2.Sign() == 0 {
		return opError(ErrDivisionByZero, in.Opcode, "%s / 0", x1)
	}
	return e.pushInt(new(big.Int).Quo(x1, x2))
}

// opMod takes the remainder of truncating division; the result carries the
// dividend's sign.
func opMod(e *Engine, in *Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	if x2.Sign() == 0 {
		return opError(ErrDivisionByZero, in.Opcode, "%s %% 0", x1)
	}
	return e.pushInt(new(big.Int).Rem(x1, x2))
}

func opPow(e *Engine, in *Instruction) error {
	exp, err := e.popInt()
	if err != nil {
		return err
	}
	base, err := e.popInt()
	if err != nil {
		return err
	}
	if exp.Sign() < 0 || !exp.IsInt64() || exp.Int64() > int64(e.limits.MaxPowExponent) {
		return opError(ErrInvalidOperation, in.Opcode, "exponent %s outside [0, %d]",
			exp, e.limits.MaxPowExponent)
	}
	return e.pushInt(new(big.Int).Exp(base, exp, nil))
}

func opSqrt(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	if x.Sign() < 0 {
		return opError(ErrInvalidOperation, in.Opcode, "square root of %s", x)
	}
	return e.pushInt(new(big.Int).Sqrt(x))
}

// opModMul computes x1 * x2 mod m: x1 x2 m -> result.
func opModMul(e *Engine, in *Instruction) error {
	m, err := e.popInt()
	if err != nil {
		return err
	}
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	if m.Sign() == 0 {
		return opError(ErrDivisionByZero, in.Opcode, "zero modulus")
	}
	z := new(big.Int).Mul(x1, x2)
	return e.pushInt(z.Rem(z, m))
}

// opModPow computes x^exp mod m; an exponent of -1 requests the modular
// inverse of x.
func opModPow(e *Engine, in *Instruction) error {
	m, err := e.popInt()
	if err != nil {
		return err
	}
	exp, err := e.popInt()
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	if exp.IsInt64() && exp.Int64() == -1 {
		z := new(big.Int).ModInverse(x, m)
		if z == nil {
			return opError(ErrInvalidOperation, in.Opcode, "%s has no inverse mod %s", x, m)
		}
		return e.pushInt(z)
	}
	if exp.Sign() < 0 {
		return opError(ErrInvalidOperation, in.Opcode, "negative exponent %s", exp)
	}
	if m.Sign() == 0 {
		return opError(ErrDivisionByZero, in.Opcode, "zero modulus")
	}
	return e.pushInt(new(big.Int).Exp(x, exp, m))
}

func popShift(e *Engine, in *Instruction) (int, error) {
	n, err := e.popInt()
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Sign() < 0 || n.Int64() > int64(e.limits.MaxShift) {
		return 0, opError(ErrInvalidOperation, in.Opcode, "shift %s outside [0, %d]",
			n, e.limits.MaxShift)
	}
	return int(n.Int64()), nil
}

func opShl(e *Engine, in *Instruction) error {
	n, err := popShift(e, in)
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	if n == 0 {
		return e.pushInt(x)
	}
	return e.pushInt(new(big.Int).Lsh(x, uint(n)))
}

// opShr shifts arithmetically, preserving the sign.
func opShr(e *Engine, in *Instruction) error {
	n, err := popShift(e, in)
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	if n == 0 {
		return e.pushInt(x)
	}
	return e.pushInt(new(big.Int).Rsh(x, uint(n)))
}

func opNot(e *Engine, in *Instruction) error {
	x, err := e.popBool()
	if err != nil {
		return err
	}
	e.Push(Boolean(!x))
	return nil
}

func opBoolAnd(e *Engine, in *Instruction) error {
	x2, err := e.popBool()
	if err != nil {
		return err
	}
	x1, err := e.popBool()
	if err != nil {
		return err
	}
	e.Push(Boolean(x1 && x2))
	return nil
}

func opBoolOr(e *Engine, in *Instruction) error {
	x2, err := e.popBool()
	if err != nil {
		return err
	}
	x1, err := e.popBool()
	if err != nil {
		return err
	}
	e.Push(Boolean(x1 || x2))
	return nil
}

func opNz(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	e.Push(Boolean(x.Sign() != 0))
	return nil
}

func opNumEqual(e *Engine, in *Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	e.Push(Boolean(x1.Cmp(x2) == 0))
	return nil
}

func opNumNotEqual(e *Engine, in *Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	e.Push(Boolean(x1.Cmp(x2) != 0))
	return nil
}

// numericCompare implements the ordering opcodes. A Null on either side
// makes the comparison false.
func numericCompare(e *Engine, cmp func(int) bool) error {
	x2, err := e.Pop()
	if err != nil {
		return err
	}
	x1, err := e.Pop()
	if err != nil {
		return err
	}
	if x1.Type() == AnyType || x2.Type() == AnyType {
		e.Push(Boolean(false))
		return nil
	}
	n1, err := x1.Int()
	if err != nil {
		return err
	}
	n2, err := x2.Int()
	if err != nil {
		return err
	}
	e.Push(Boolean(cmp(n1.Cmp(n2))))
	return nil
}

func opLt(e *Engine, in *Instruction) error {
	return numericCompare(e, func(c int) bool { return c < 0 })
}

func opLe(e *Engine, in *Instruction) error {
	return numericCompare(e, func(c int) bool { return c <= 0 })
}

func opGt(e *Engine, in *Instruction) error {
	return numericCompare(e, func(c int) bool { return c > 0 })
}

func opGe(e *Engine, in *Instruction) error {
	return numericCompare(e, func(c int) bool { return c >= 0 })
}

func opMin(e *Engine, in *Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	if x1.Cmp(x2) <= 0 {
		return e.pushInt(x1)
	}
	return e.pushInt(x2)
}

func opMax(e *Engine, in *Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	if x1.Cmp(x2) >= 0 {
		return e.pushInt(x1)
	}
	return e.pushInt(x2)
}

// opWithin tests a <= x < b: x a b -> bool.
func opWithin(e *Engine, in *Instruction) error {
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	e.Push(Boolean(a.Cmp(x) <= 0 && x.Cmp(b) < 0))
	return nil
}

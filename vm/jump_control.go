package vm

func opNop(e *Engine, in *Instruction) error { return nil }

// ---------------------------------------------------------------------------
// Branches
// ---------------------------------------------------------------------------

func jumpTo(e *Engine, target int) error {
	if err := e.Context().jump(target); err != nil {
		return err
	}
	e.jumping = true
	return nil
}

func opJmp(e *Engine, in *Instruction) error {
	return jumpTo(e, in.JumpTarget())
}

func opJmpIf(e *Engine, in *Instruction) error {
	cond, err := e.popBool()
	if err != nil {
		return err
	}
	if cond {
		return jumpTo(e, in.JumpTarget())
	}
	return nil
}

func opJmpIfNot(e *Engine, in *Instruction) error {
	cond, err := e.popBool()
	if err != nil {
		return err
	}
	if !cond {
		return jumpTo(e, in.JumpTarget())
	}
	return nil
}

// jumpCompare pops two integers and branches when cmp accepts their
// ordering. x1 sits below x2 on the stack.
func jumpCompare(e *Engine, in *Instruction, cmp func(int) bool) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	if cmp(x1.Cmp(x2)) {
		return jumpTo(e, in.JumpTarget())
	}
	return nil
}

func opJmpEq(e *Engine, in *Instruction) error {
	return jumpCompare(e, in, func(c int) bool { return c == 0 })
}

func opJmpNe(e *Engine, in *Instruction) error {
	return jumpCompare(e, in, func(c int) bool { return c != 0 })
}

func opJmpGt(e *Engine, in *Instruction) error {
	return jumpCompare(e, in, func(c int) bool { return c > 0 })
}

func opJmpGe(e *Engine, in *Instruction) error {
	return jumpCompare(e, in, func(c int) bool { return c >= 0 })
}

func opJmpLt(e *Engine, in *Instruction) error {
	return jumpCompare(e, in, func(c int) bool { return c < 0 })
}

func opJmpLe(e *Engine, in *Instruction) error {
	return jumpCompare(e, in, func(c int) bool { return c <= 0 })
}

// ---------------------------------------------------------------------------
// Calls and returns
// ---------------------------------------------------------------------------

// opCall pushes a clone of the current frame starting at the target. The
// caller's instruction pointer advances normally, so RET resumes after the
// CALL.
func opCall(e *Engine, in *Instruction) error {
	return e.loadContext(e.Context().clone(in.JumpTarget()))
}

func opCallA(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	ptr, ok := item.(Pointer)
	if !ok {
		return opError(ErrInvalidType, in.Opcode, "needs a pointer, got %s", item.Type())
	}
	ctx := e.Context()
	if ptr.script != ctx.script {
		return opError(ErrInvalidOperation, in.Opcode, "pointer into a different script")
	}
	return e.loadContext(ctx.clone(ptr.position))
}

func opCallT(e *Engine, in *Instruction) error {
	if e.loadToken == nil {
		return opError(ErrInvalidOperation, in.Opcode, "no token resolver installed")
	}
	return e.loadToken(e, in.Uint16())
}

func opRet(e *Engine, in *Instruction) error {
	if err := e.unloadContext(); err != nil {
		return err
	}
	if len(e.istack) == 0 {
		e.state = StateHalted
	}
	e.jumping = true
	return nil
}

func opSyscall(e *Engine, in *Instruction) error {
	e.metrics.Syscalls++
	return e.interops.invoke(e, in.Uint32())
}

// ---------------------------------------------------------------------------
// Aborts and assertions
// ---------------------------------------------------------------------------

func opAbort(e *Engine, in *Instruction) error {
	return opError(ErrAbort, in.Opcode, "execution aborted")
}

func opAbortMsg(e *Engine, in *Instruction) error {
	msg, err := e.popBytes()
	if err != nil {
		return err
	}
	return opError(ErrAbort, in.Opcode, "%s", msg)
}

func opAssert(e *Engine, in *Instruction) error {
	cond, err := e.popBool()
	if err != nil {
		return err
	}
	if !cond {
		return opError(ErrAbort, in.Opcode, "assertion failed")
	}
	return nil
}

func opAssertMsg(e *Engine, in *Instruction) error {
	msg, err := e.popBytes()
	if err != nil {
		return err
	}
	cond, err := e.popBool()
	if err != nil {
		return err
	}
	if !cond {
		return opError(ErrAbort, in.Opcode, "%s", msg)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Protected regions
// ---------------------------------------------------------------------------

func opThrow(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	return e.Throw(item)
}

func opTry(e *Engine, in *Instruction) error {
	ctx := e.Context()
	if len(ctx.tryStack) >= e.limits.MaxTryNestingDepth {
		return opError(ErrInvalidOperation, in.Opcode, "nesting limit %d reached",
			e.limits.MaxTryNestingDepth)
	}
	catch, finally := in.TryTargets()
	if catch == -1 && finally == -1 {
		return opError(ErrInvalidOperation, in.Opcode, "neither catch nor finally")
	}
	ctx.tryStack = append(ctx.tryStack, newTryContext(catch, finally))
	return nil
}

func opEndTry(e *Engine, in *Instruction) error {
	ctx := e.Context()
	if len(ctx.tryStack) == 0 {
		return opError(ErrInvalidOperation, in.Opcode, "no protected region open")
	}
	tc := ctx.tryStack[len(ctx.tryStack)-1]
	if tc.state == tryStateFinally {
		return opError(ErrInvalidOperation, in.Opcode, "inside a finally block")
	}
	end := in.JumpTarget()
	if tc.hasFinally() {
		tc.state = tryStateFinally
		tc.endPointer = end
		return jumpTo(e, tc.finallyPointer)
	}
	ctx.tryStack = ctx.tryStack[:len(ctx.tryStack)-1]
	return jumpTo(e, end)
}

func opEndFinally(e *Engine, in *Instruction) error {
	ctx := e.Context()
	if len(ctx.tryStack) == 0 {
		return opError(ErrInvalidOperation, in.Opcode, "no protected region open")
	}
	tc := ctx.tryStack[len(ctx.tryStack)-1]
	if tc.state != tryStateFinally {
		return opError(ErrInvalidOperation, in.Opcode, "not inside a finally block")
	}
	ctx.tryStack = ctx.tryStack[:len(ctx.tryStack)-1]
	if e.uncaught != nil {
		// The finally block ran on the way out of an unwinding
		// exception; resume the search for a handler.
		return e.handleException()
	}
	return jumpTo(e, tc.endPointer)
}

package vm

import "fmt"

// ExecutionContext is one frame of the invocation stack: a script, an
// instruction pointer and the frame's variable slots. The evaluation stack
// and static fields may be shared with other frames of the same script
// (CALL creates such clones); locals and arguments are always private.
type ExecutionContext struct {
	script *Script
	ip     int

	stack  *EvaluationStack
	static *Slot
	local  *Slot
	args   *Slot
	// staticOwner is set on the frame whose INITSSLOT created the static
	// slot; clones share the slot without owning it.
	staticOwner bool

	tryStack []*tryContext

	// rvcount is the number of items handed to the caller when this frame
	// returns; -1 means all of them.
	rvcount int
}

func newExecutionContext(script *Script, rvcount int, rc *ReferenceCounter) *ExecutionContext {
	return &ExecutionContext{
		script:  script,
		stack:   NewEvaluationStack(rc),
		rvcount: rvcount,
	}
}

// Script returns the frame's program.
func (ctx *ExecutionContext) Script() *Script { return ctx.script }

// IP returns the current instruction pointer.
func (ctx *ExecutionContext) IP() int { return ctx.ip }

// Stack returns the frame's evaluation stack.
func (ctx *ExecutionContext) Stack() *EvaluationStack { return ctx.stack }

// CurrentInstruction returns the instruction at the instruction pointer, or
// nil when the pointer sits at the end of the script (the implicit RET).
func (ctx *ExecutionContext) CurrentInstruction() (*Instruction, error) {
	if ctx.ip == ctx.script.Len() {
		return nil, nil
	}
	return ctx.script.InstructionAt(ctx.ip)
}

// jump moves the instruction pointer to an already validated offset.
func (ctx *ExecutionContext) jump(target int) error {
	if target < 0 || target > ctx.script.Len() {
		return fmt.Errorf("%w: jump to %d, outside [0, %d]", ErrInvalidJump, target, ctx.script.Len())
	}
	ctx.ip = target
	return nil
}

// clone builds the frame CALL pushes: same script, shared evaluation stack
// and static fields, fresh locals and arguments, return-all semantics.
func (ctx *ExecutionContext) clone(ip int) *ExecutionContext {
	return &ExecutionContext{
		script:  ctx.script,
		ip:      ip,
		stack:   ctx.stack,
		static:  ctx.static,
		rvcount: -1,
	}
}

// releaseSlots drops the frame's slot references when it is unloaded.
// Shared static fields are only released by their owning frame.
func (ctx *ExecutionContext) releaseSlots() {
	if ctx.local != nil {
		ctx.local.ClearReferences()
		ctx.local = nil
	}
	if ctx.args != nil {
		ctx.args.ClearReferences()
		ctx.args = nil
	}
	if ctx.static != nil && ctx.staticOwner {
		ctx.static.ClearReferences()
		ctx.static = nil
	}
}

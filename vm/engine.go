package vm

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Metrics counts what an engine instance has done so far.
type Metrics struct {
	Instructions uint64
	Syscalls     uint64
	Sweeps       uint64
}

// Engine executes validated scripts deterministically: the same scripts and
// the same syscall behavior always yield the same final state and result
// stack.
type Engine struct {
	id       uuid.UUID
	limits   Limits
	rc       *ReferenceCounter
	interops *InteropService

	state   State
	istack  []*ExecutionContext
	results *EvaluationStack

	// uncaught holds the exception item while it unwinds through finally
	// blocks and frames.
	uncaught StackItem
	faultErr error

	// jumping is set by any handler that moved the instruction pointer;
	// the loop then skips the default advance.
	jumping bool

	callFlags CallFlags

	// loadToken resolves CALLT indices into loaded contexts. Without a
	// resolver CALLT faults.
	loadToken func(e *Engine, index uint16) error

	breakpoints map[*Script]map[int]struct{}
	hook        func(e *Engine, in *Instruction)
	metrics     Metrics
}

// NewEngine creates an engine with the given limits and syscall registry.
// A nil interops installs an empty registry.
func NewEngine(limits Limits, interops *InteropService) (*Engine, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if interops == nil {
		interops = NewInteropService()
	}
	rc := NewReferenceCounter()
	return &Engine{
		id:          uuid.New(),
		limits:      limits,
		rc:          rc,
		interops:    interops,
		state:       StateBreak,
		results:     NewEvaluationStack(rc),
		callFlags:   CallFlagAll,
		breakpoints: make(map[*Script]map[int]struct{}),
	}, nil
}

// ID returns the engine's instance identifier.
func (e *Engine) ID() uuid.UUID { return e.id }

// State returns the current machine state.
func (e *Engine) State() State { return e.state }

// Limits returns the configured execution limits.
func (e *Engine) Limits() Limits { return e.limits }

// RefCounter returns the engine's reference counter.
func (e *Engine) RefCounter() *ReferenceCounter { return e.rc }

// ResultStack returns the stack holding the final outputs after HALT.
func (e *Engine) ResultStack() *EvaluationStack { return e.results }

// Metrics returns a snapshot of the engine's counters.
func (e *Engine) Metrics() Metrics { return e.metrics }

// FaultError returns the error that drove the engine into FAULT, if any.
func (e *Engine) FaultError() error { return e.faultErr }

// SetCallFlags sets the permissions syscalls are checked against.
func (e *Engine) SetCallFlags(f CallFlags) { e.callFlags = f }

// SetInteropHost attaches the fallback dispatcher for syscalls with no
// registered handler.
func (e *Engine) SetInteropHost(host InteropHost) { e.interops.SetHost(host) }

// ClearInteropHost detaches the fallback dispatcher.
func (e *Engine) ClearInteropHost() { e.interops.SetHost(nil) }

// SetLoadTokenHandler installs the CALLT resolver.
func (e *Engine) SetLoadTokenHandler(fn func(e *Engine, index uint16) error) {
	e.loadToken = fn
}

// SetInstructionHook installs a callback invoked before each instruction.
func (e *Engine) SetInstructionHook(fn func(e *Engine, in *Instruction)) {
	e.hook = fn
}

// ---------------------------------------------------------------------------
// Context management
// ---------------------------------------------------------------------------

// Context returns the currently executing frame, or nil.
func (e *Engine) Context() *ExecutionContext {
	if len(e.istack) == 0 {
		return nil
	}
	return e.istack[len(e.istack)-1]
}

// EntryContext returns the bottom frame of the invocation stack, or nil.
func (e *Engine) EntryContext() *ExecutionContext {
	if len(e.istack) == 0 {
		return nil
	}
	return e.istack[0]
}

// InvocationDepth returns the number of loaded frames.
func (e *Engine) InvocationDepth() int { return len(e.istack) }

// LoadScript decodes code and loads it as a new frame returning all of its
// final stack to the caller.
func (e *Engine) LoadScript(code []byte) (*ExecutionContext, error) {
	script, err := NewScript(code)
	if err != nil {
		return nil, err
	}
	ctx := newExecutionContext(script, -1, e.rc)
	if err := e.loadContext(ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

// LoadScriptAt loads code as a frame that starts executing at offset ip and
// hands rvcount items to its caller on return; -1 hands over all of them.
func (e *Engine) LoadScriptAt(code []byte, rvcount, ip int) (*ExecutionContext, error) {
	script, err := NewScript(code)
	if err != nil {
		return nil, err
	}
	if _, err := script.InstructionAt(ip); err != nil && ip != script.Len() {
		return nil, err
	}
	ctx := newExecutionContext(script, rvcount, e.rc)
	ctx.ip = ip
	if err := e.loadContext(ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

// LoadContext pushes a prepared frame. Used by CALLT resolvers and hosts.
func (e *Engine) LoadContext(ctx *ExecutionContext) error {
	return e.loadContext(ctx)
}

func (e *Engine) loadContext(ctx *ExecutionContext) error {
	if len(e.istack) >= e.limits.MaxInvocationStackSize {
		return fmt.Errorf("%w: invocation stack limit %d reached",
			ErrInvalidOperation, e.limits.MaxInvocationStackSize)
	}
	e.istack = append(e.istack, ctx)
	return nil
}

// unloadContext pops the top frame, transfers its return values and
// releases its slots.
func (e *Engine) unloadContext() error {
	ctx := e.istack[len(e.istack)-1]
	e.istack = e.istack[:len(e.istack)-1]

	target := e.results
	if len(e.istack) > 0 {
		target = e.istack[len(e.istack)-1].stack
	}
	if ctx.stack != target {
		if ctx.rvcount >= 0 && ctx.stack.Len() != ctx.rvcount {
			return fmt.Errorf("%w: frame returns %d items, declared %d",
				ErrInvalidOperation, ctx.stack.Len(), ctx.rvcount)
		}
		if err := ctx.stack.MoveTo(target, -1); err != nil {
			return err
		}
	}
	ctx.releaseSlots()
	if e.rc.CheckZeroReferred() > e.limits.MaxStackItemCount {
		return fmt.Errorf("%w: %d references after frame unload, limit %d",
			ErrTooManyItems, e.rc.Count(), e.limits.MaxStackItemCount)
	}
	return nil
}

// unwindContext pops the top frame while an exception is in flight. Its
// operands are discarded, never returned; a stack shared with the frame
// below stays untouched.
func (e *Engine) unwindContext() {
	ctx := e.istack[len(e.istack)-1]
	e.istack = e.istack[:len(e.istack)-1]
	shared := len(e.istack) > 0 && e.istack[len(e.istack)-1].stack == ctx.stack
	if !shared {
		ctx.stack.Clear()
	}
	ctx.releaseSlots()
	e.rc.CheckZeroReferred()
}

// ---------------------------------------------------------------------------
// Execution loop
// ---------------------------------------------------------------------------

// Execute runs until the machine halts, faults or hits a breakpoint. It
// returns the resulting state; in FAULT the cause is also returned.
func (e *Engine) Execute() (State, error) {
	if e.state.IsTerminal() {
		return e.state, e.faultErr
	}
	e.state = StateRunning
	for e.state == StateRunning {
		e.step()
	}
	return e.state, e.faultErr
}

// StepInto executes a single instruction.
func (e *Engine) StepInto() (State, error) {
	if e.state.IsTerminal() {
		return e.state, e.faultErr
	}
	e.state = StateRunning
	e.step()
	if e.state == StateRunning {
		e.state = StateBreak
	}
	return e.state, e.faultErr
}

// StepOver runs until control returns to the current frame depth.
func (e *Engine) StepOver() (State, error) {
	depth := len(e.istack)
	if e.state.IsTerminal() {
		return e.state, e.faultErr
	}
	e.state = StateRunning
	for {
		e.step()
		if e.state != StateRunning || len(e.istack) <= depth {
			break
		}
	}
	if e.state == StateRunning {
		e.state = StateBreak
	}
	return e.state, e.faultErr
}

// StepOut runs until the current frame has returned.
func (e *Engine) StepOut() (State, error) {
	depth := len(e.istack)
	if e.state.IsTerminal() {
		return e.state, e.faultErr
	}
	e.state = StateRunning
	for e.state == StateRunning && len(e.istack) >= depth {
		e.step()
	}
	if e.state == StateRunning {
		e.state = StateBreak
	}
	return e.state, e.faultErr
}

// step executes exactly one instruction of the current frame.
func (e *Engine) step() {
	if len(e.istack) == 0 {
		e.state = StateHalted
		return
	}
	ctx := e.Context()
	in, err := ctx.CurrentInstruction()
	if err != nil {
		e.fault(err)
		return
	}
	if in == nil {
		// Falling off the end of the script returns.
		in = &Instruction{Opcode: OpRET, offset: ctx.ip}
	}
	if e.hook != nil {
		e.hook(e, in)
	}
	log.Debugf("engine %s: %04d %s", e.id, in.Offset(), in)

	e.jumping = false
	if err := dispatch(e, in); err != nil {
		e.fault(err)
		return
	}
	e.metrics.Instructions++
	if !e.jumping {
		ctx.ip = in.NextOffset()
	}
	if e.rc.Count() > e.limits.MaxStackItemCount {
		e.metrics.Sweeps++
		if e.rc.CheckZeroReferred() > e.limits.MaxStackItemCount {
			e.fault(fmt.Errorf("%w: %d references, limit %d",
				ErrTooManyItems, e.rc.Count(), e.limits.MaxStackItemCount))
			return
		}
	}
	if e.state == StateRunning {
		if cur := e.Context(); cur != nil && e.hasBreakpoint(cur.script, cur.ip) {
			e.state = StateBreak
		}
	}
}

// fault moves the machine into its terminal error state. Stacks are kept
// for post-mortem inspection.
func (e *Engine) fault(err error) {
	e.faultErr = err
	e.state = StateFaulted
	log.Errorf("engine %s faulted: %s", e.id, err)
}

// ---------------------------------------------------------------------------
// Breakpoints
// ---------------------------------------------------------------------------

// AddBreakpoint marks an offset of script; execution breaks when the
// instruction pointer reaches it.
func (e *Engine) AddBreakpoint(script *Script, offset int) {
	bps, ok := e.breakpoints[script]
	if !ok {
		bps = make(map[int]struct{})
		e.breakpoints[script] = bps
	}
	bps[offset] = struct{}{}
}

// RemoveBreakpoint clears a previously set breakpoint.
func (e *Engine) RemoveBreakpoint(script *Script, offset int) {
	if bps, ok := e.breakpoints[script]; ok {
		delete(bps, offset)
	}
}

func (e *Engine) hasBreakpoint(script *Script, offset int) bool {
	bps, ok := e.breakpoints[script]
	if !ok {
		return false
	}
	_, ok = bps[offset]
	return ok
}

// ---------------------------------------------------------------------------
// Exceptions
// ---------------------------------------------------------------------------

// Throw raises item as an in-script exception. Syscall handlers may use it
// to surface host failures that contracts are allowed to catch.
func (e *Engine) Throw(item StackItem) error {
	if e.uncaught != nil {
		return fmt.Errorf("%w: exception already in flight", ErrInvalidOperation)
	}
	e.uncaught = item
	e.rc.AddStackReference(item)
	return e.handleException()
}

// handleException walks the protected-region stacks innermost-first across
// frames, diverting into the nearest catch or pending finally. With no
// handler anywhere the machine faults.
func (e *Engine) handleException() error {
	for len(e.istack) > 0 {
		ctx := e.Context()
		for i := len(ctx.tryStack) - 1; i >= 0; i-- {
			tc := ctx.tryStack[i]
			if tc.state == tryStateFinally {
				// An exception escaping a finally block abandons
				// this region entirely.
				continue
			}
			if tc.state == tryStateTry && tc.hasCatch() {
				ctx.tryStack = ctx.tryStack[:i+1]
				tc.state = tryStateCatch
				ctx.stack.Push(e.uncaught)
				e.clearUncaught()
				e.jumping = true
				return ctx.jump(tc.catchPointer)
			}
			if tc.hasFinally() {
				// Run the finally block, then keep unwinding from
				// ENDFINALLY.
				ctx.tryStack = ctx.tryStack[:i+1]
				tc.state = tryStateFinally
				tc.endPointer = -1
				e.jumping = true
				return ctx.jump(tc.finallyPointer)
			}
			ctx.tryStack = ctx.tryStack[:i]
		}
		e.unwindContext()
		e.jumping = true
	}
	msg := describeException(e.uncaught)
	e.clearUncaught()
	return fmt.Errorf("%w: %s", ErrUnhandledException, msg)
}

func (e *Engine) clearUncaught() {
	if e.uncaught != nil {
		e.rc.RemoveStackReference(e.uncaught)
		e.uncaught = nil
	}
}

func describeException(item StackItem) string {
	if item == nil {
		return "<nil>"
	}
	if b, err := item.Bytes(); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", item)
}

// ---------------------------------------------------------------------------
// Stack helpers
// ---------------------------------------------------------------------------

// Push places item on the current frame's stack.
func (e *Engine) Push(item StackItem) {
	e.Context().stack.Push(item)
}

// Pop removes and returns the current frame's top item.
func (e *Engine) Pop() (StackItem, error) {
	return e.Context().stack.Pop()
}

func (e *Engine) popInt() (*big.Int, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	return item.Int()
}

func (e *Engine) popBool() (bool, error) {
	item, err := e.Pop()
	if err != nil {
		return false, err
	}
	return item.Bool()
}

func (e *Engine) popBytes() ([]byte, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	return item.Bytes()
}

// pushInt wraps v with the integer width check applied.
func (e *Engine) pushInt(v *big.Int) error {
	if intByteLen(v) > e.limits.MaxIntegerSize {
		return fmt.Errorf("%w: integer exceeds %d bytes", ErrOverflow, e.limits.MaxIntegerSize)
	}
	n, err := NewInteger(v)
	if err != nil {
		return err
	}
	e.Push(n)
	return nil
}

package vm

import (
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("ledgervm.vm")

// TraceEntry records one executed instruction.
type TraceEntry struct {
	Offset     int
	Opcode     Opcode
	StackDepth int
	FrameDepth int
}

// Tracer collects an execution trace through the engine's instruction hook.
type Tracer struct {
	Entries []TraceEntry
}

// Hook returns the callback to install with SetInstructionHook.
func (t *Tracer) Hook() func(e *Engine, in *Instruction) {
	return func(e *Engine, in *Instruction) {
		t.Entries = append(t.Entries, TraceEntry{
			Offset:     in.Offset(),
			Opcode:     in.Opcode,
			StackDepth: e.Context().Stack().Len(),
			FrameDepth: e.InvocationDepth(),
		})
	}
}

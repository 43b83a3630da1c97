package vm

// tryState tracks which section of a protected region is executing.
type tryState byte

const (
	tryStateTry tryState = iota
	tryStateCatch
	tryStateFinally
)

func (ts tryState) String() string {
	switch ts {
	case tryStateTry:
		return "try"
	case tryStateCatch:
		return "catch"
	default:
		return "finally"
	}
}

// tryContext is one entry of a context's protected-region stack, created by
// TRY and discharged by ENDTRY/ENDFINALLY. A pointer of -1 marks an absent
// handler.
type tryContext struct {
	catchPointer   int
	finallyPointer int
	// endPointer is where execution resumes after the finally block. It
	// is recorded by ENDTRY, or by the thrower when an exception passes
	// through the finally block.
	endPointer int
	state      tryState
}

func newTryContext(catchP, finallyP int) *tryContext {
	return &tryContext{
		catchPointer:   catchP,
		finallyPointer: finallyP,
		endPointer:     -1,
		state:          tryStateTry,
	}
}

func (tc *tryContext) hasCatch() bool   { return tc.catchPointer >= 0 }
func (tc *tryContext) hasFinally() bool { return tc.finallyPointer >= 0 }

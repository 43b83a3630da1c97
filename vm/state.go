package vm

// ---------------------------------------------------------------------------
// Engine run state
// ---------------------------------------------------------------------------

// State is the engine-wide run state. Transitions are monotonic:
// Running -> {Halted, Faulted} or Running -> Break -> Running. Halted and
// Faulted are terminal.
type State byte

const (
	// StateRunning is the initial state; the engine can step.
	StateRunning State = iota
	// StateHalted means the final context returned. Terminal.
	StateHalted
	// StateFaulted means an error or unhandled exception escaped. Terminal.
	StateFaulted
	// StateBreak is a debugger pause, resumable to Running.
	StateBreak
)

// IsTerminal reports whether no further stepping is permitted.
func (s State) IsTerminal() bool {
	return s == StateHalted || s == StateFaulted
}

// String implements the Stringer interface.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateHalted:
		return "HALTED"
	case StateFaulted:
		return "FAULTED"
	case StateBreak:
		return "BREAK"
	default:
		return "UNKNOWN"
	}
}

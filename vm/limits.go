package vm

import "fmt"

// ---------------------------------------------------------------------------
// Execution limits
// ---------------------------------------------------------------------------

// Limits bounds the resources a script may consume. The limits are part of
// consensus: every validating node must run with identical values or engines
// will disagree on which scripts fault.
type Limits struct {
	// MaxInvocationStackSize bounds the number of nested call frames.
	MaxInvocationStackSize int
	// MaxTryNestingDepth bounds the exception-handler stack per frame.
	MaxTryNestingDepth int
	// MaxStackItemCount bounds the total tracked stack-item references
	// across all stacks, slots and containers of one engine.
	MaxStackItemCount int
	// MaxItemSize bounds the byte length of byte strings and buffers.
	MaxItemSize int
	// MaxIntegerSize bounds the encoded byte length of integers.
	MaxIntegerSize int
	// MaxShift bounds the shift amount of SHL and SHR.
	MaxShift int
	// MaxPowExponent bounds the exponent of POW before computing, so a tiny
	// script cannot demand a super-linear amount of work.
	MaxPowExponent int
}

// DefaultLimits returns the consensus default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxInvocationStackSize: 1024,
		MaxTryNestingDepth:     16,
		MaxStackItemCount:      2048,
		MaxItemSize:            2 * 65535,
		MaxIntegerSize:         32,
		MaxShift:               256,
		MaxPowExponent:         4096,
	}
}

// Validate rejects limit configurations the engine cannot honor.
func (l Limits) Validate() error {
	if l.MaxInvocationStackSize < 1 {
		return fmt.Errorf("%w: MaxInvocationStackSize must be at least 1", ErrInvalidOperation)
	}
	if l.MaxTryNestingDepth < 1 {
		return fmt.Errorf("%w: MaxTryNestingDepth must be at least 1", ErrInvalidOperation)
	}
	if l.MaxStackItemCount < 1 {
		return fmt.Errorf("%w: MaxStackItemCount must be at least 1", ErrInvalidOperation)
	}
	if l.MaxItemSize < 1 {
		return fmt.Errorf("%w: MaxItemSize must be at least 1", ErrInvalidOperation)
	}
	if l.MaxIntegerSize < 1 || l.MaxIntegerSize > 32 {
		return fmt.Errorf("%w: MaxIntegerSize must be in [1, 32]", ErrInvalidOperation)
	}
	if l.MaxShift < 0 {
		return fmt.Errorf("%w: MaxShift must not be negative", ErrInvalidOperation)
	}
	if l.MaxPowExponent < 0 {
		return fmt.Errorf("%w: MaxPowExponent must not be negative", ErrInvalidOperation)
	}
	return nil
}

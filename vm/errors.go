package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// Every error in this package is rooted in one of these sentinels so hosts
// can classify faults with errors.Is. All of them are deterministic: the
// same script with the same inputs produces the same error on every node,
// so none of them are retryable.
var (
	// ErrParse indicates a malformed script detected at decode time.
	ErrParse = errors.New("script parse error")
	// ErrInvalidOpcode indicates an undefined opcode byte.
	ErrInvalidOpcode = errors.New("invalid opcode")
	// ErrStackUnderflow indicates a pop or peek beyond the stack depth.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrInvalidType indicates an operand of the wrong stack-item type.
	ErrInvalidType = errors.New("invalid type")
	// ErrInvalidCast indicates a coercion with no defined conversion.
	ErrInvalidCast = errors.New("invalid cast")
	// ErrOverflow indicates an integer result above the configured size cap.
	ErrOverflow = errors.New("integer overflow")
	// ErrUnderflow indicates an integer result below the representable range.
	ErrUnderflow = errors.New("integer underflow")
	// ErrDivisionByZero indicates DIV, MOD, MODMUL or MODPOW by zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidOperation indicates a contract violation such as a duplicate
	// interop registration or an out-of-range context index.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInvalidJump indicates a branch target outside the script or not on
	// an instruction boundary.
	ErrInvalidJump = errors.New("invalid jump target")
	// ErrUnhandledException indicates a script THROW that escaped every frame.
	ErrUnhandledException = errors.New("unhandled exception")
	// ErrSerialization indicates a malformed binary stack-item encoding.
	ErrSerialization = errors.New("serialization error")
	// ErrTooManyItems indicates the tracked stack-item count limit was hit.
	ErrTooManyItems = errors.New("stack item limit exceeded")
	// ErrItemTooLarge indicates a byte string or buffer above the size limit.
	ErrItemTooLarge = errors.New("item size limit exceeded")
	// ErrSyscallNotFound indicates an unregistered syscall hash with no host
	// attached to delegate to.
	ErrSyscallNotFound = errors.New("syscall not found")
	// ErrAbort indicates an ABORT or failed ASSERT. Never catchable in-script.
	ErrAbort = errors.New("abort")
)

// opError wraps a sentinel with positional context from the faulting opcode.
func opError(sentinel error, op Opcode, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", sentinel, op, fmt.Sprintf(format, args...))
}

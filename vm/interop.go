package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// CallFlags restrict what a syscall may do in the host environment.
type CallFlags byte

const (
	CallFlagNone        CallFlags = 0
	CallFlagReadStates  CallFlags = 1 << 0
	CallFlagWriteStates CallFlags = 1 << 1
	CallFlagAllowCall   CallFlags = 1 << 2
	CallFlagAllowNotify CallFlags = 1 << 3

	CallFlagStates   = CallFlagReadStates | CallFlagWriteStates
	CallFlagReadOnly = CallFlagReadStates | CallFlagAllowCall
	CallFlagAll      = CallFlagStates | CallFlagAllowCall | CallFlagAllowNotify
)

// Has reports whether every flag in req is set.
func (f CallFlags) Has(req CallFlags) bool { return f&req == req }

// SyscallHandler implements one host service invoked through SYSCALL.
type SyscallHandler func(e *Engine) error

// InteropDescriptor describes one registered syscall.
type InteropDescriptor struct {
	Name          string
	ID            uint32
	Handler       SyscallHandler
	Price         int64
	RequiredFlags CallFlags
}

// InteropHost resolves syscalls that have no registered descriptor. It lets
// an embedder route the whole syscall surface through its own dispatcher.
type InteropHost interface {
	InvokeSyscall(e *Engine, id uint32) error
}

// InteropNameToID derives the wire identifier of a syscall name: the first
// four bytes of its SHA-256 digest, read little-endian.
func InteropNameToID(name string) uint32 {
	h := sha256.Sum256([]byte(name))
	return binary.LittleEndian.Uint32(h[:4])
}

// InteropService is the syscall registry an engine dispatches against.
type InteropService struct {
	methods map[uint32]*InteropDescriptor
	host    InteropHost
}

// NewInteropService creates an empty registry.
func NewInteropService() *InteropService {
	return &InteropService{methods: make(map[uint32]*InteropDescriptor)}
}

// SetHost installs the fallback dispatcher for unregistered syscalls.
func (s *InteropService) SetHost(host InteropHost) { s.host = host }

// Register adds a named syscall. Registering the same name, or a colliding
// identifier, twice is an error.
func (s *InteropService) Register(name string, handler SyscallHandler, price int64, flags CallFlags) error {
	id := InteropNameToID(name)
	if existing, ok := s.methods[id]; ok {
		return fmt.Errorf("%w: syscall id 0x%08X already registered as %q", ErrInvalidOperation, id, existing.Name)
	}
	s.methods[id] = &InteropDescriptor{
		Name:          name,
		ID:            id,
		Handler:       handler,
		Price:         price,
		RequiredFlags: flags,
	}
	return nil
}

// Lookup returns the descriptor for id, if any.
func (s *InteropService) Lookup(id uint32) (*InteropDescriptor, bool) {
	d, ok := s.methods[id]
	return d, ok
}

// GetPrice returns the registered price of id, or zero when unknown.
func (s *InteropService) GetPrice(id uint32) int64 {
	if d, ok := s.methods[id]; ok {
		return d.Price
	}
	return 0
}

// invoke dispatches one syscall for the engine.
func (s *InteropService) invoke(e *Engine, id uint32) error {
	if d, ok := s.methods[id]; ok {
		if !e.callFlags.Has(d.RequiredFlags) {
			return fmt.Errorf("%w: syscall %q requires flags %04b, have %04b",
				ErrInvalidOperation, d.Name, d.RequiredFlags, e.callFlags)
		}
		return d.Handler(e)
	}
	if s.host != nil {
		return s.host.InvokeSyscall(e, id)
	}
	return fmt.Errorf("%w: 0x%08X", ErrSyscallNotFound, id)
}

package vm

import (
	"encoding/binary"
	"fmt"
)

// Script is an immutable, fully decoded byte-code program. Construction
// validates every instruction so execution never has to re-check operand
// bounds or branch targets.
type Script struct {
	code         []byte
	instructions map[int]*Instruction
}

// NewScript decodes and validates code. It fails if any opcode is unknown,
// an operand or PUSHDATA payload runs past the end of the script, or a
// branch, try or jump-table target does not land on an instruction boundary.
func NewScript(code []byte) (*Script, error) {
	s := &Script{
		code:         code,
		instructions: make(map[int]*Instruction),
	}
	for ip := 0; ip < len(code); {
		in, err := s.decodeAt(ip)
		if err != nil {
			return nil, err
		}
		s.instructions[ip] = in
		ip = in.NextOffset()
	}
	if err := s.validateTargets(); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the script length in bytes.
func (s *Script) Len() int { return len(s.code) }

// Bytes returns the raw code. Callers must not mutate it.
func (s *Script) Bytes() []byte { return s.code }

// InstructionAt returns the instruction starting at offset ip. Offsets that
// fall inside an operand are invalid.
func (s *Script) InstructionAt(ip int) (*Instruction, error) {
	in, ok := s.instructions[ip]
	if !ok {
		return nil, fmt.Errorf("%w: no instruction at offset %d", ErrInvalidJump, ip)
	}
	return in, nil
}

func (s *Script) decodeAt(ip int) (*Instruction, error) {
	op := Opcode(s.code[ip])
	info, ok := op.Info()
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X at offset %d", ErrInvalidOpcode, byte(op), ip)
	}
	in := &Instruction{Opcode: op, offset: ip}
	next := ip + 1
	size := info.OperandBytes
	if info.PrefixBytes > 0 {
		if next+info.PrefixBytes > len(s.code) {
			return nil, fmt.Errorf("%w: truncated length prefix of %s at offset %d", ErrParse, op, ip)
		}
		switch info.PrefixBytes {
		case 1:
			size = int(s.code[next])
		case 2:
			size = int(binary.LittleEndian.Uint16(s.code[next:]))
		case 4:
			u := binary.LittleEndian.Uint32(s.code[next:])
			if u > uint32(len(s.code)) {
				return nil, fmt.Errorf("%w: oversized %s payload at offset %d", ErrParse, op, ip)
			}
			size = int(u)
		}
		next += info.PrefixBytes
	}
	if next+size > len(s.code) {
		return nil, fmt.Errorf("%w: truncated operand of %s at offset %d", ErrParse, op, ip)
	}
	in.Operand = s.code[next : next+size]
	return in, nil
}

// validateTargets checks every static branch destination after the whole
// script has been decoded, so forward jumps resolve too.
func (s *Script) validateTargets() error {
	for ip, in := range s.instructions {
		switch in.Opcode {
		case OpJMP, OpJMPIF, OpJMPIFNOT, OpJMPEQ, OpJMPNE,
			OpJMPGT, OpJMPGE, OpJMPLT, OpJMPLE, OpCALL,
			OpJMPL, OpJMPIFL, OpJMPIFNOTL, OpJMPEQL, OpJMPNEL,
			OpJMPGTL, OpJMPGEL, OpJMPLTL, OpJMPLEL, OpCALLL,
			OpPushA, OpENDTRY, OpENDTRYL:
			target := in.JumpTarget()
			if in.Opcode == OpPushA {
				target = ip + int(in.Int32())
			}
			if err := s.checkBoundary(in, target); err != nil {
				return err
			}
		case OpTRY, OpTRYL:
			catch, finally := in.TryTargets()
			if catch != -1 {
				if err := s.checkBoundary(in, catch); err != nil {
					return err
				}
			}
			if finally != -1 {
				if err := s.checkBoundary(in, finally); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Script) checkBoundary(in *Instruction, target int) error {
	if target == len(s.code) {
		// Landing exactly at the end is the implicit RET.
		return nil
	}
	if target < 0 || target > len(s.code) {
		return fmt.Errorf("%w: %s at offset %d targets %d, outside [0, %d]",
			ErrInvalidJump, in.Opcode, in.offset, target, len(s.code))
	}
	if _, ok := s.instructions[target]; !ok {
		return fmt.Errorf("%w: %s at offset %d targets %d, inside an operand",
			ErrInvalidJump, in.Opcode, in.offset, target)
	}
	return nil
}

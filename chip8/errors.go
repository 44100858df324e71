package chip8

import "fmt"

// Machine faults are all fatal: the instruction set is exhaustively defined,
// so there is no recovery and no skip-and-continue. Each fault carries the
// program counter of the offending instruction.

// A DecodeErr is returned when an instruction word matches no defined opcode
// pattern.
type DecodeErr struct {
	Opcode uint16
	PC     uint16
}

func (e DecodeErr) Error() string {
	return fmt.Sprintf("illegal opcode %04x at pc %04x", e.Opcode, e.PC)
}

// A StackOverflowErr is returned when a call would push beyond the 16 stack
// slots.
type StackOverflowErr struct {
	PC uint16
}

func (e StackOverflowErr) Error() string {
	return fmt.Sprintf("call stack overflow at pc %04x", e.PC)
}

// A StackUnderflowErr is returned when a return pops an empty stack.
type StackUnderflowErr struct {
	PC uint16
}

func (e StackUnderflowErr) Error() string {
	return fmt.Sprintf("call stack underflow at pc %04x", e.PC)
}

// A MemRangeErr is returned when an instruction fetch or an I-indexed access
// runs past the end of memory.
type MemRangeErr struct {
	Addr uint16
	PC   uint16
}

func (e MemRangeErr) Error() string {
	return fmt.Sprintf("memory access at %04x out of range at pc %04x", e.Addr, e.PC)
}

// A KeyRangeErr is returned when a key instruction names a key above 0xF.
type KeyRangeErr struct {
	Key uint8
	PC  uint16
}

func (e KeyRangeErr) Error() string {
	return fmt.Sprintf("key %02x out of range at pc %04x", e.Key, e.PC)
}

// A ROMSizeErr is returned for programs that do not fit in memory.
type ROMSizeErr struct {
	Size int
}

func (e ROMSizeErr) Error() string {
	return fmt.Sprintf("ROM size %d exceeds the %d bytes of program space",
		e.Size, MemorySize-ProgramStart)
}

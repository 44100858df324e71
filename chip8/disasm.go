package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Disassembler. Dumps the loaded ROM to stdout, one word per line:
// ADDR: WORD  mnemonic operands
// Decoding goes through the retrogolib opcode tables; words that match no
// instruction are emitted as .dw directives.

func (c *chip8) Disassemble() {
	disasmROM(c.mem[:], ProgramStart, c.romEnd)
}

func (c *chip8) DisassembleOp(at uint16) uint16 {
	return uint16(disasmOp(c.mem[:], at))
}

// lookupOp finds the instruction a word encodes, or nil. The tables are
// bucketed by top nibble, then matched by mask.
func lookupOp(w uint16) *chip8.Instruction {
	for _, op := range chip8.Opcodes[int(w>>12)] {
		if w&op.Info.Mask == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

func formatOp(w uint16) string {
	ins := lookupOp(w)
	if ins == nil {
		return fmt.Sprintf(".dw $%04X", w)
	}
	if params := formatOperands(ins.Name, w); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params)
	}
	return ins.Name
}

// formatOperands renders the operand list for an instruction word, in the
// conventional Vx/kk/nnn assembler forms.
func formatOperands(name string, w uint16) string {
	x := (w >> 8) & 0xf
	y := (w >> 4) & 0xf

	switch name {
	case chip8.Cls.Name, chip8.Ret.Name:
		return ""

	case chip8.Jp.Name:
		if w&0xf000 == 0xb000 {
			return fmt.Sprintf("V0, $%03X", w&0xfff)
		}
		return fmt.Sprintf("$%03X", w&0xfff)

	case chip8.Call.Name:
		return fmt.Sprintf("$%03X", w&0xfff)

	case chip8.Se.Name, chip8.Sne.Name:
		if w&0xf000 == 0x5000 || w&0xf000 == 0x9000 {
			return fmt.Sprintf("V%X, V%X", x, y)
		}
		return fmt.Sprintf("V%X, $%02X", x, w&0xff)

	case chip8.Ld.Name:
		return formatLoad(w, x, y)

	case chip8.Add.Name:
		switch w & 0xf000 {
		case 0x7000:
			return fmt.Sprintf("V%X, $%02X", x, w&0xff)
		case 0x8000:
			return fmt.Sprintf("V%X, V%X", x, y)
		default: // Fx1E
			return fmt.Sprintf("I, V%X", x)
		}

	case chip8.Or.Name, chip8.And.Name, chip8.Xor.Name,
		chip8.Sub.Name, chip8.Subn.Name:
		return fmt.Sprintf("V%X, V%X", x, y)

	case chip8.Shr.Name, chip8.Shl.Name:
		return fmt.Sprintf("V%X", x)

	case chip8.Rnd.Name:
		return fmt.Sprintf("V%X, $%02X", x, w&0xff)

	case chip8.Drw.Name:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, w&0xf)

	case chip8.Skp.Name, chip8.Sknp.Name:
		return fmt.Sprintf("V%X", x)
	}
	return ""
}

// The Fx__ loads address the timers, keypad, font and memory; render them
// with their conventional operand symbols.
func formatLoad(w, x, y uint16) string {
	switch w & 0xf000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, w&0xff)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xa000:
		return fmt.Sprintf("I, $%03X", w&0xfff)
	}

	switch w & 0xff {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0a:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// Emits a single instruction. Returns the number of bytes it uses.
func disasmOp(mem []byte, at uint16) int {
	if int(at)+1 >= len(mem) {
		return 2
	}

	w := uint16(mem[at])<<8 | uint16(mem[at+1])
	fmt.Printf("%04x: %04x  %s\n", at, w, formatOp(w))
	return 2
}

func disasmROM(mem []byte, start, end uint16) {
	for at := start; at < end; {
		at += uint16(disasmOp(mem, at))
	}
}

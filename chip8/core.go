package chip8

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bshepherdson/tc-chip8/common"
)

const (
	// MemorySize is the full address space, including the interpreter area.
	MemorySize = 4096
	// ProgramStart is where loaded programs begin; 0x000-0x1FF is reserved.
	ProgramStart = 0x200
	// StackDepth is the number of return-address slots.
	StackDepth = 16
	// NumRegisters counts the general registers V0-VF.
	NumRegisters = 16
	// NumKeys counts the hex keypad keys 0x0-0xF.
	NumKeys = 16

	fontHeight = 5 // Bytes per built-in digit sprite.
)

// Built-in hexadecimal digit sprites, fontHeight bytes each, loaded at
// address 0 so that Fx29 can point I at digit Vx with a multiply.
var font = [NumKeys * fontHeight]byte{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}

type chip8 struct {
	pc          uint16
	index       uint16
	sp          uint8
	delayTimer  uint8
	soundTimer  uint8
	dirty       bool
	debug       bool
	romEnd      uint16
	v           [NumRegisters]uint8
	stack       [StackDepth]uint16
	keys        [NumKeys]bool
	screen      [common.ScreenHeight][common.ScreenWidth]bool
	mem         [MemorySize]byte
	rng         *rand.Rand
	devices     []common.Device
	breakpoints []uint16
}

// New returns a freshly created CHIP-8 machine: memory zeroed except for the
// digit sprites, PC at the program load address.
func New() common.Machine {
	c := new(chip8)
	c.reset()
	return c
}

func (c *chip8) reset() {
	*c = chip8{}
	copy(c.mem[:], font[:])
	c.pc = ProgramStart
	c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Implement the Machine interface.
func (c *chip8) Memory() []byte {
	return c.mem[:]
}

func (c *chip8) LoadROM(rom []byte) error {
	if len(rom) > MemorySize-ProgramStart {
		return ROMSizeErr{Size: len(rom)}
	}
	copy(c.mem[ProgramStart:], rom)
	c.romEnd = ProgramStart + uint16(len(rom))
	return nil
}

func (c *chip8) Screen() *[common.ScreenHeight][common.ScreenWidth]bool {
	return &c.screen
}

func (c *chip8) Dirty() bool {
	return c.dirty
}

func (c *chip8) ClearDirty() {
	c.dirty = false
}

func (c *chip8) SoundTimer() uint8 {
	return c.soundTimer
}

func (c *chip8) KeyDown(key uint8) {
	c.keys[key&0x0f] = true
}

func (c *chip8) ClearKeys() {
	for i := range c.keys {
		c.keys[i] = false
	}
}

func (c *chip8) AddDevice(dev common.Device) {
	c.devices = append(c.devices, dev)
}

func (c *chip8) Devices() []common.Device {
	return c.devices
}

func (c *chip8) AddBreakpoint(at uint16) {
	c.breakpoints = append(c.breakpoints, at)
}

func (c *chip8) Debugging() *bool {
	return &c.debug
}

func (c *chip8) DebugPrompt() {
	fmt.Printf("%04x debug> ", c.pc)
}

func (c *chip8) Exit() {
	for _, dev := range c.devices {
		dev.Cleanup()
	}
	os.Exit(0)
}

// RunOp executes a single machine cycle: fetch the big-endian word at PC,
// advance PC by 2 before executing, run the instruction, then tick both
// timers. The timers tick every cycle no matter which instruction ran.
func (c *chip8) RunOp() error {
	// Tick the hardware devices first; they latch keys and repaint.
	for _, dev := range c.devices {
		dev.Tick(c)
	}

	if int(c.pc)+1 >= MemorySize {
		return MemRangeErr{Addr: c.pc, PC: c.pc}
	}

	w := uint16(c.mem[c.pc])<<8 | uint16(c.mem[c.pc+1])
	c.pc += 2
	if err := c.exec(w); err != nil {
		return err
	}

	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}

	for _, bp := range c.breakpoints {
		if bp == c.pc {
			c.debug = true
		}
	}

	return nil
}

// exec runs a single instruction word. PC has already been advanced past it,
// so jumps and skips work on the already-advanced counter.
func (c *chip8) exec(w uint16) error {
	at := c.pc - 2 // Where the word was fetched from, for diagnostics.
	x := (w >> 8) & 0xf
	y := (w >> 4) & 0xf
	kk := uint8(w)
	nnn := w & 0xfff
	n := w & 0xf

	switch w >> 12 {
	case 0x0:
		switch w {
		case 0x00e0: // CLS
			c.screen = [common.ScreenHeight][common.ScreenWidth]bool{}
			c.dirty = true
		case 0x00ee: // RET
			if c.sp == 0 {
				return StackUnderflowErr{PC: at}
			}
			c.sp--
			c.pc = c.stack[c.sp]
		default: // 0nnn: machine-code call on the original, treated as a jump.
			c.pc = nnn
		}

	case 0x1: // JP nnn
		c.pc = nnn

	case 0x2: // CALL nnn
		if int(c.sp) >= StackDepth {
			return StackOverflowErr{PC: at}
		}
		c.stack[c.sp] = c.pc
		c.sp++
		c.pc = nnn

	case 0x3: // SE Vx, kk
		if c.v[x] == kk {
			c.pc += 2
		}
	case 0x4: // SNE Vx, kk
		if c.v[x] != kk {
			c.pc += 2
		}
	case 0x5: // SE Vx, Vy
		if n != 0 {
			return DecodeErr{Opcode: w, PC: at}
		}
		if c.v[x] == c.v[y] {
			c.pc += 2
		}

	case 0x6: // LD Vx, kk
		c.v[x] = kk
	case 0x7: // ADD Vx, kk - wraps, no carry flag.
		c.v[x] += kk

	case 0x8:
		return c.execALU(w, x, y)

	case 0x9: // SNE Vx, Vy
		if n != 0 {
			return DecodeErr{Opcode: w, PC: at}
		}
		if c.v[x] != c.v[y] {
			c.pc += 2
		}

	case 0xa: // LD I, nnn
		c.index = nnn
	case 0xb: // JP V0, nnn
		c.pc = nnn + uint16(c.v[0])
	case 0xc: // RND Vx, kk
		c.v[x] = uint8(c.rng.Uint32()) & kk

	case 0xd: // DRW Vx, Vy, n
		return c.draw(x, y, n)

	case 0xe:
		key := c.v[x]
		if key >= NumKeys {
			return KeyRangeErr{Key: key, PC: at}
		}
		switch kk {
		case 0x9e: // SKP Vx
			if c.keys[key] {
				c.pc += 2
			}
		case 0xa1: // SKNP Vx - a held key also clears the whole latch.
			if c.keys[key] {
				c.ClearKeys()
			} else {
				c.pc += 2
			}
		default:
			return DecodeErr{Opcode: w, PC: at}
		}

	case 0xf:
		return c.execMisc(w, x, kk)
	}

	return nil
}

// 8xy_ register-to-register ALU instructions. VF receives the carry, borrow
// or shifted-out bit, and is written last, so it wins when x is VF itself.
func (c *chip8) execALU(w, x, y uint16) error {
	switch w & 0xf {
	case 0x0: // LD Vx, Vy
		c.v[x] = c.v[y]
	case 0x1: // OR Vx, Vy
		c.v[x] |= c.v[y]
	case 0x2: // AND Vx, Vy
		c.v[x] &= c.v[y]
	case 0x3: // XOR Vx, Vy
		c.v[x] ^= c.v[y]

	case 0x4: // ADD Vx, Vy - VF is the carry.
		sum := uint16(c.v[x]) + uint16(c.v[y])
		c.v[x] = uint8(sum)
		flag := uint8(0)
		if sum > 0xff {
			flag = 1
		}
		c.v[0xf] = flag

	case 0x5: // SUB Vx, Vy - VF set when Vx > Vy, compared before subtracting.
		flag := uint8(0)
		if c.v[x] > c.v[y] {
			flag = 1
		}
		c.v[x] -= c.v[y]
		c.v[0xf] = flag

	case 0x6: // SHR Vx - VF is the bit shifted out.
		flag := c.v[x] & 1
		c.v[x] >>= 1
		c.v[0xf] = flag

	case 0x7: // SUBN Vx, Vy - VF set when Vy > Vx.
		flag := uint8(0)
		if c.v[y] > c.v[x] {
			flag = 1
		}
		c.v[x] = c.v[y] - c.v[x]
		c.v[0xf] = flag

	case 0xe: // SHL Vx - VF is the bit shifted out.
		flag := c.v[x] >> 7
		c.v[x] <<= 1
		c.v[0xf] = flag

	default:
		return DecodeErr{Opcode: w, PC: c.pc - 2}
	}
	return nil
}

// Fx__ timer, keypad and memory instructions.
func (c *chip8) execMisc(w, x uint16, kk uint8) error {
	at := c.pc - 2
	switch kk {
	case 0x07: // LD Vx, DT
		c.v[x] = c.delayTimer

	case 0x0a: // LD Vx, K - spin on this instruction until a key is latched.
		for k := uint8(0); k < NumKeys; k++ {
			if c.keys[k] {
				c.v[x] = k
				c.ClearKeys()
				return nil
			}
		}
		c.pc -= 2

	case 0x15: // LD DT, Vx
		c.delayTimer = c.v[x]
	case 0x18: // LD ST, Vx
		c.soundTimer = c.v[x]

	case 0x1e: // ADD I, Vx - 16-bit add, no flag.
		c.index += uint16(c.v[x])

	case 0x29: // LD F, Vx - point I at the digit sprite for Vx.
		c.index = uint16(c.v[x]) * fontHeight

	case 0x33: // LD B, Vx - BCD of Vx at I, I+1, I+2.
		if int(c.index)+3 > MemorySize {
			return MemRangeErr{Addr: c.index, PC: at}
		}
		c.mem[c.index] = c.v[x] / 100
		c.mem[c.index+1] = (c.v[x] / 10) % 10
		c.mem[c.index+2] = c.v[x] % 10

	case 0x55: // LD [I], Vx - store V0..Vx ascending.
		if int(c.index)+int(x)+1 > MemorySize {
			return MemRangeErr{Addr: c.index, PC: at}
		}
		for r := uint16(0); r <= x; r++ {
			c.mem[c.index+r] = c.v[r]
		}

	case 0x65: // LD Vx, [I] - load V0..Vx ascending.
		if int(c.index)+int(x)+1 > MemorySize {
			return MemRangeErr{Addr: c.index, PC: at}
		}
		for r := uint16(0); r <= x; r++ {
			c.v[r] = c.mem[c.index+r]
		}

	default:
		return DecodeErr{Opcode: w, PC: at}
	}
	return nil
}

// draw XORs an n-row sprite from memory at I onto the screen at (Vx, Vy).
// Both axes wrap. VF reports whether any lit pixel was extinguished anywhere
// in the sprite, and is cleared before the first row.
func (c *chip8) draw(x, y, n uint16) error {
	if int(c.index)+int(n) > MemorySize {
		return MemRangeErr{Addr: c.index, PC: c.pc - 2}
	}

	c.v[0xf] = 0
	for row := uint16(0); row < n; row++ {
		sprite := c.mem[c.index+row]
		py := (int(c.v[y]) + int(row)) % common.ScreenHeight
		for col := 0; col < 8; col++ {
			mask := byte(1 << (7 - uint(col)))
			if sprite&mask == 0 {
				continue
			}
			px := (int(c.v[x]) + col) % common.ScreenWidth
			if c.screen[py][px] {
				c.v[0xf] = 1
			}
			c.screen[py][px] = !c.screen[py][px]
		}
	}

	c.dirty = true
	return nil
}

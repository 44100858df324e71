package chip8

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/retroenv/retrogolib/assert"
)

// prog packs instruction words into big-endian ROM bytes.
func prog(words ...uint16) []byte {
	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}
	return rom
}

func testMachine(t *testing.T, rom []byte) *chip8 {
	t.Helper()
	m := New().(*chip8)
	assert.NoError(t, m.LoadROM(rom))
	return m
}

func step(t *testing.T, m *chip8) {
	t.Helper()
	assert.NoError(t, m.RunOp())
}

func TestNew(t *testing.T) {
	m := New().(*chip8)

	assert.Equal(t, uint16(ProgramStart), m.pc)
	assert.Equal(t, uint8(0), m.sp)
	assert.Equal(t, uint8(0), m.delayTimer)
	assert.Equal(t, uint8(0), m.soundTimer)
	assert.False(t, m.Dirty())

	// The digit sprites live at address 0, nothing else is set.
	assert.Equal(t, byte(0xf0), m.mem[0])
	assert.Equal(t, byte(0x70), m.mem[9])
	assert.Equal(t, byte(0x80), m.mem[79])
	assert.Equal(t, byte(0), m.mem[80])
	assert.Equal(t, byte(0), m.mem[ProgramStart])
}

func TestLoadROM(t *testing.T) {
	t.Run("loads at program start", func(t *testing.T) {
		m := New().(*chip8)
		assert.NoError(t, m.LoadROM([]byte{0x12, 0x34, 0x56}))

		assert.Equal(t, byte(0x12), m.mem[0x200])
		assert.Equal(t, byte(0x34), m.mem[0x201])
		assert.Equal(t, byte(0x56), m.mem[0x202])
		assert.Equal(t, uint16(0x203), m.romEnd)
	})

	t.Run("accepts the largest program", func(t *testing.T) {
		m := New().(*chip8)
		assert.NoError(t, m.LoadROM(make([]byte, MemorySize-ProgramStart)))
	})

	t.Run("rejects oversized programs", func(t *testing.T) {
		m := New().(*chip8)
		err := m.LoadROM(make([]byte, MemorySize-ProgramStart+1))
		assert.Error(t, err)

		e, ok := err.(ROMSizeErr)
		assert.True(t, ok)
		assert.Equal(t, MemorySize-ProgramStart+1, e.Size)
	})
}

func TestFetchAdvance(t *testing.T) {
	m := testMachine(t, prog(0x6005, 0x7003))

	step(t, m)
	step(t, m)

	assert.Equal(t, uint8(8), m.v[0])
	assert.Equal(t, uint16(0x204), m.pc)
}

func TestJumps(t *testing.T) {
	t.Run("jp", func(t *testing.T) {
		m := testMachine(t, prog(0x1234))
		step(t, m)
		assert.Equal(t, uint16(0x234), m.pc)
	})

	t.Run("jp V0 offset", func(t *testing.T) {
		m := testMachine(t, prog(0xb230))
		m.v[0] = 4
		step(t, m)
		assert.Equal(t, uint16(0x234), m.pc)
	})

	t.Run("machine code call is a jump", func(t *testing.T) {
		m := testMachine(t, prog(0x0208))
		step(t, m)
		assert.Equal(t, uint16(0x208), m.pc)
	})
}

func TestCallRet(t *testing.T) {
	rom := prog(0x2208, 0x0000, 0x0000, 0x0000, 0x00ee)
	m := testMachine(t, rom)

	step(t, m)
	assert.Equal(t, uint16(0x208), m.pc)
	assert.Equal(t, uint8(1), m.sp)
	assert.Equal(t, uint16(0x202), m.stack[0])

	step(t, m)
	assert.Equal(t, uint16(0x202), m.pc)
	assert.Equal(t, uint8(0), m.sp)
}

func TestStackOverflow(t *testing.T) {
	// A subroutine that calls itself fills all slots, then faults.
	m := testMachine(t, prog(0x2200))
	for i := 0; i < StackDepth; i++ {
		step(t, m)
	}
	assert.Equal(t, uint8(StackDepth), m.sp)

	err := m.RunOp()
	assert.Error(t, err)
	e, ok := err.(StackOverflowErr)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x200), e.PC)
}

func TestStackUnderflow(t *testing.T) {
	m := testMachine(t, prog(0x00ee))

	err := m.RunOp()
	assert.Error(t, err)
	e, ok := err.(StackUnderflowErr)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x200), e.PC)
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		op     uint16
		v0, v1 uint8
		wantPC uint16
	}{
		{"se imm taken", 0x3007, 7, 0, 0x204},
		{"se imm not taken", 0x3007, 8, 0, 0x202},
		{"sne imm taken", 0x4007, 8, 0, 0x204},
		{"sne imm not taken", 0x4007, 7, 0, 0x202},
		{"se reg taken", 0x5010, 9, 9, 0x204},
		{"se reg not taken", 0x5010, 9, 8, 0x202},
		{"sne reg taken", 0x9010, 9, 8, 0x204},
		{"sne reg not taken", 0x9010, 9, 9, 0x202},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMachine(t, prog(tt.op))
			m.v[0] = tt.v0
			m.v[1] = tt.v1
			step(t, m)
			assert.Equal(t, tt.wantPC, m.pc)
		})
	}
}

func TestALU(t *testing.T) {
	tests := []struct {
		name   string
		op     uint16
		v0, v1 uint8
		want   uint8
		wantVF uint8
	}{
		{"ld", 0x8010, 0, 42, 42, 0},
		{"or", 0x8011, 0xcc, 0xaa, 0xee, 0},
		{"and", 0x8012, 0xcc, 0xaa, 0x88, 0},
		{"xor", 0x8013, 0xcc, 0xaa, 0x66, 0},
		{"add no carry", 0x8014, 10, 20, 30, 0},
		{"add carry wraps", 0x8014, 250, 10, 4, 1},
		{"add carry exact", 0x8014, 0xff, 1, 0, 1},
		{"sub no borrow", 0x8015, 20, 5, 15, 1},
		{"sub equal", 0x8015, 7, 7, 0, 0},
		{"sub borrow wraps", 0x8015, 5, 10, 251, 0},
		{"subn no borrow", 0x8017, 5, 20, 15, 1},
		{"subn equal", 0x8017, 9, 9, 0, 0},
		{"subn borrow wraps", 0x8017, 20, 5, 241, 0},
		{"shr odd", 0x8016, 5, 0, 2, 1},
		{"shr even", 0x8016, 8, 0, 4, 0},
		{"shr ignores vy", 0x8016, 8, 0xff, 4, 0},
		{"shl high bit", 0x801e, 0x81, 0, 0x02, 1},
		{"shl", 0x801e, 0x41, 0, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMachine(t, prog(tt.op))
			m.v[0] = tt.v0
			m.v[1] = tt.v1
			step(t, m)
			assert.Equal(t, tt.want, m.v[0])
			assert.Equal(t, tt.wantVF, m.v[0xf])
		})
	}

	t.Run("flag wins when vf is the destination", func(t *testing.T) {
		m := testMachine(t, prog(0x8f14))
		m.v[0xf] = 250
		m.v[1] = 10
		step(t, m)
		assert.Equal(t, uint8(1), m.v[0xf])
	})
}

func TestAddImmediate(t *testing.T) {
	// 7xkk wraps and never touches the flag.
	m := testMachine(t, prog(0x70ff))
	m.v[0] = 2
	m.v[0xf] = 0
	step(t, m)
	assert.Equal(t, uint8(1), m.v[0])
	assert.Equal(t, uint8(0), m.v[0xf])
}

func TestTimers(t *testing.T) {
	t.Run("countdown", func(t *testing.T) {
		m := testMachine(t, prog(0x6005, 0xf015, 0xf107))

		step(t, m) // V0 = 5
		step(t, m) // DT = 5, then the cycle tick drops it to 4.
		step(t, m) // V1 reads 4, tick drops DT to 3.

		assert.Equal(t, uint8(4), m.v[1])
		assert.Equal(t, uint8(3), m.delayTimer)
	})

	t.Run("sound timer", func(t *testing.T) {
		m := testMachine(t, prog(0x6003, 0xf018, 0x1204))

		step(t, m)
		step(t, m)
		assert.Equal(t, uint8(2), m.SoundTimer())

		step(t, m)
		assert.Equal(t, uint8(1), m.SoundTimer())
		step(t, m)
		assert.Equal(t, uint8(0), m.SoundTimer())
		step(t, m)
		assert.Equal(t, uint8(0), m.SoundTimer())
	})

	t.Run("floor at zero", func(t *testing.T) {
		m := testMachine(t, prog(0x6005))
		step(t, m)
		assert.Equal(t, uint8(0), m.delayTimer)
	})
}

func TestRnd(t *testing.T) {
	m := testMachine(t, prog(0xc03f, 0xc100))
	m.rng = rand.New(rand.NewSource(42))
	want := uint8(rand.New(rand.NewSource(42)).Uint32()) & 0x3f

	step(t, m)
	assert.Equal(t, want, m.v[0])

	// A zero mask pins the result no matter what the generator says.
	step(t, m)
	assert.Equal(t, uint8(0), m.v[1])
}

func TestDraw(t *testing.T) {
	t.Run("digit sprite", func(t *testing.T) {
		m := testMachine(t, prog(0xf029, 0xd015))
		step(t, m) // I = digit 0 sprite.
		step(t, m)

		for row := 0; row < fontHeight; row++ {
			for col := 0; col < 8; col++ {
				want := font[row]&(0x80>>uint(col)) != 0
				assert.Equal(t, want, m.screen[row][col])
			}
		}
		assert.Equal(t, uint8(0), m.v[0xf])
		assert.True(t, m.Dirty())
	})

	t.Run("clean draw resets vf", func(t *testing.T) {
		m := testMachine(t, prog(0xf029, 0xd015))
		m.v[0xf] = 1
		step(t, m)
		step(t, m)
		assert.Equal(t, uint8(0), m.v[0xf])
	})

	t.Run("redraw erases and reports collision", func(t *testing.T) {
		m := testMachine(t, prog(0xf029, 0xd015, 0xd015))
		step(t, m)
		step(t, m)
		step(t, m)

		assert.Equal(t, uint8(1), m.v[0xf])
		for y := 0; y < common.ScreenHeight; y++ {
			for x := 0; x < common.ScreenWidth; x++ {
				assert.False(t, m.screen[y][x])
			}
		}
	})

	t.Run("wraps both axes", func(t *testing.T) {
		m := testMachine(t, prog(0xd012))
		m.index = 0x300
		m.mem[0x300] = 0xff
		m.mem[0x301] = 0xff
		m.v[0] = 62
		m.v[1] = 31
		step(t, m)

		for _, y := range []int{31, 0} {
			for _, x := range []int{62, 63, 0, 1, 2, 3, 4, 5} {
				assert.True(t, m.screen[y][x])
			}
			assert.False(t, m.screen[y][6])
			assert.False(t, m.screen[y][61])
		}
		assert.Equal(t, uint8(0), m.v[0xf])
	})

	t.Run("sprite read past end of memory", func(t *testing.T) {
		m := testMachine(t, prog(0xd012))
		m.index = 0xfff

		err := m.RunOp()
		assert.Error(t, err)
		e, ok := err.(MemRangeErr)
		assert.True(t, ok)
		assert.Equal(t, uint16(0xfff), e.Addr)
		assert.Equal(t, uint16(0x200), e.PC)
	})

	t.Run("dirty flag", func(t *testing.T) {
		m := testMachine(t, prog(0xf029, 0xd015))
		step(t, m)
		assert.False(t, m.Dirty())
		step(t, m)
		assert.True(t, m.Dirty())
		m.ClearDirty()
		assert.False(t, m.Dirty())
	})
}

func TestCls(t *testing.T) {
	m := testMachine(t, prog(0xf029, 0xd015, 0x00e0, 0x00e0))
	step(t, m)
	step(t, m)
	assert.True(t, m.screen[0][0])

	m.ClearDirty()
	step(t, m)
	assert.False(t, m.screen[0][0])
	assert.True(t, m.Dirty())

	// Clearing an already clear screen is the same clear screen.
	step(t, m)
	for y := 0; y < common.ScreenHeight; y++ {
		for x := 0; x < common.ScreenWidth; x++ {
			assert.False(t, m.screen[y][x])
		}
	}
	assert.True(t, m.Dirty())
}

func TestKeyLatch(t *testing.T) {
	m := New().(*chip8)

	m.KeyDown(5)
	assert.True(t, m.keys[5])

	// Key indexes are masked to the low nibble.
	m.KeyDown(0x15)
	assert.True(t, m.keys[5])

	m.KeyDown(9)
	m.ClearKeys()
	for i := 0; i < NumKeys; i++ {
		assert.False(t, m.keys[i])
	}
}

func TestSkipOnKey(t *testing.T) {
	t.Run("skp pressed", func(t *testing.T) {
		m := testMachine(t, prog(0x6505, 0xe59e))
		m.KeyDown(5)
		step(t, m)
		step(t, m)
		assert.Equal(t, uint16(0x206), m.pc)
		assert.True(t, m.keys[5]) // skp leaves the latch alone.
	})

	t.Run("skp not pressed", func(t *testing.T) {
		m := testMachine(t, prog(0x6505, 0xe59e))
		step(t, m)
		step(t, m)
		assert.Equal(t, uint16(0x204), m.pc)
	})

	t.Run("sknp not pressed", func(t *testing.T) {
		m := testMachine(t, prog(0x6505, 0xe5a1))
		step(t, m)
		step(t, m)
		assert.Equal(t, uint16(0x206), m.pc)
	})

	t.Run("sknp pressed clears the latch", func(t *testing.T) {
		m := testMachine(t, prog(0x6505, 0xe5a1))
		m.KeyDown(5)
		m.KeyDown(9)
		step(t, m)
		step(t, m)
		assert.Equal(t, uint16(0x204), m.pc)
		assert.False(t, m.keys[5])
		assert.False(t, m.keys[9])
	})

	t.Run("key out of range", func(t *testing.T) {
		m := testMachine(t, prog(0x6010, 0xe09e))
		step(t, m)

		err := m.RunOp()
		assert.Error(t, err)
		e, ok := err.(KeyRangeErr)
		assert.True(t, ok)
		assert.Equal(t, uint8(16), e.Key)
		assert.Equal(t, uint16(0x202), e.PC)
	})
}

func TestWaitKey(t *testing.T) {
	t.Run("spins until a key arrives", func(t *testing.T) {
		m := testMachine(t, prog(0xf30a))
		m.delayTimer = 5

		step(t, m)
		assert.Equal(t, uint16(0x200), m.pc)
		// The cycle still completes, so the timers still tick.
		assert.Equal(t, uint8(4), m.delayTimer)

		step(t, m)
		assert.Equal(t, uint16(0x200), m.pc)

		m.KeyDown(0xb)
		step(t, m)
		assert.Equal(t, uint16(0x202), m.pc)
		assert.Equal(t, uint8(0xb), m.v[3])
		assert.False(t, m.keys[0xb])
	})

	t.Run("lowest key wins", func(t *testing.T) {
		m := testMachine(t, prog(0xf30a))
		m.KeyDown(9)
		m.KeyDown(3)
		step(t, m)
		assert.Equal(t, uint8(3), m.v[3])
	})
}

func TestFontPointer(t *testing.T) {
	for d := uint16(0); d < NumKeys; d++ {
		m := testMachine(t, prog(0x6000|d, 0xf029))
		step(t, m)
		step(t, m)

		assert.Equal(t, d*fontHeight, m.index)
		assert.Equal(t, font[d*fontHeight], m.mem[m.index])
	}
}

func TestBCD(t *testing.T) {
	tests := []struct {
		val  uint8
		want [3]byte
	}{
		{205, [3]byte{2, 0, 5}},
		{7, [3]byte{0, 0, 7}},
		{255, [3]byte{2, 5, 5}},
		{0, [3]byte{0, 0, 0}},
	}

	for _, tt := range tests {
		m := testMachine(t, prog(0xf033))
		m.index = 0x300
		m.v[0] = tt.val
		step(t, m)

		assert.Equal(t, tt.want[0], m.mem[0x300])
		assert.Equal(t, tt.want[1], m.mem[0x301])
		assert.Equal(t, tt.want[2], m.mem[0x302])
	}

	t.Run("out of range", func(t *testing.T) {
		m := testMachine(t, prog(0xf033))
		m.index = 0xffe

		err := m.RunOp()
		assert.Error(t, err)
		_, ok := err.(MemRangeErr)
		assert.True(t, ok)
	})
}

func TestRegisterDump(t *testing.T) {
	t.Run("store ascending", func(t *testing.T) {
		m := testMachine(t, prog(0xf355))
		m.v[0], m.v[1], m.v[2], m.v[3] = 10, 20, 30, 40
		m.v[4] = 99
		m.index = 0x300
		step(t, m)

		assert.Equal(t, byte(10), m.mem[0x300])
		assert.Equal(t, byte(20), m.mem[0x301])
		assert.Equal(t, byte(30), m.mem[0x302])
		assert.Equal(t, byte(40), m.mem[0x303])
		assert.Equal(t, byte(0), m.mem[0x304]) // V4 stays out.
		assert.Equal(t, uint16(0x300), m.index)
	})

	t.Run("load ascending", func(t *testing.T) {
		m := testMachine(t, prog(0xf365))
		m.mem[0x300], m.mem[0x301] = 1, 2
		m.mem[0x302], m.mem[0x303] = 3, 4
		m.index = 0x300
		step(t, m)

		assert.Equal(t, uint8(1), m.v[0])
		assert.Equal(t, uint8(2), m.v[1])
		assert.Equal(t, uint8(3), m.v[2])
		assert.Equal(t, uint8(4), m.v[3])
		assert.Equal(t, uint8(0), m.v[4])
		assert.Equal(t, uint16(0x300), m.index)
	})

	t.Run("store then load round trips", func(t *testing.T) {
		m := testMachine(t, prog(0xf355, 0xf365))
		m.v[0], m.v[1], m.v[2], m.v[3] = 11, 22, 33, 44
		m.index = 0x280
		step(t, m)

		m.v[0], m.v[1], m.v[2], m.v[3] = 0, 0, 0, 0
		step(t, m)

		assert.Equal(t, uint8(11), m.v[0])
		assert.Equal(t, uint8(22), m.v[1])
		assert.Equal(t, uint8(33), m.v[2])
		assert.Equal(t, uint8(44), m.v[3])
	})

	t.Run("single register", func(t *testing.T) {
		m := testMachine(t, prog(0xf055))
		m.v[0] = 0x42
		m.v[1] = 0x43
		m.index = 0x300
		step(t, m)

		assert.Equal(t, byte(0x42), m.mem[0x300])
		assert.Equal(t, byte(0), m.mem[0x301])
	})

	t.Run("fits exactly at the end of memory", func(t *testing.T) {
		m := testMachine(t, prog(0xf155))
		m.v[0], m.v[1] = 0xaa, 0xbb
		m.index = 0xffe
		step(t, m)

		assert.Equal(t, byte(0xaa), m.mem[0xffe])
		assert.Equal(t, byte(0xbb), m.mem[0xfff])
	})

	t.Run("out of range", func(t *testing.T) {
		m := testMachine(t, prog(0xf255))
		m.index = 0xffe

		err := m.RunOp()
		assert.Error(t, err)
		e, ok := err.(MemRangeErr)
		assert.True(t, ok)
		assert.Equal(t, uint16(0xffe), e.Addr)
	})
}

func TestAddIndex(t *testing.T) {
	m := testMachine(t, prog(0x6005, 0xf01e))
	m.index = 10
	step(t, m)
	step(t, m)

	assert.Equal(t, uint16(15), m.index)
	assert.Equal(t, uint8(0), m.v[0xf])
}

func TestDecodeErrors(t *testing.T) {
	words := []uint16{0x5ab1, 0x9ab3, 0x8ab8, 0xe0ff, 0xf0ff}

	for _, w := range words {
		m := testMachine(t, prog(w))

		err := m.RunOp()
		assert.Error(t, err)
		e, ok := err.(DecodeErr)
		assert.True(t, ok)
		assert.Equal(t, w, e.Opcode)
		assert.Equal(t, uint16(0x200), e.PC)
	}

	t.Run("message", func(t *testing.T) {
		err := DecodeErr{Opcode: 0x5ab1, PC: 0x200}
		assert.Equal(t, "illegal opcode 5ab1 at pc 0200", err.Error())
	})
}

func TestFetchOutOfRange(t *testing.T) {
	m := New().(*chip8)
	m.pc = 0xfff

	err := m.RunOp()
	assert.Error(t, err)
	e, ok := err.(MemRangeErr)
	assert.True(t, ok)
	assert.Equal(t, uint16(0xfff), e.Addr)
}

func TestBreakpoint(t *testing.T) {
	m := testMachine(t, prog(0x6005, 0x7003, 0x1200))
	m.AddBreakpoint(0x204)

	step(t, m)
	assert.False(t, *m.Debugging())

	step(t, m)
	assert.True(t, *m.Debugging())

	*m.Debugging() = false
	assert.False(t, m.debug)
}

type tickCounter struct {
	ticks    int
	cleanups int
}

func (d *tickCounter) Tick(common.Machine) { d.ticks++ }
func (d *tickCounter) Cleanup()            { d.cleanups++ }

func TestDevices(t *testing.T) {
	m := testMachine(t, prog(0x6005, 0x7003, 0x1200))
	dev := &tickCounter{}
	m.AddDevice(dev)

	assert.Equal(t, 1, len(m.Devices()))

	step(t, m)
	step(t, m)
	step(t, m)
	assert.Equal(t, 3, dev.ticks)
	assert.Equal(t, 0, dev.cleanups)
}

func TestRegByName(t *testing.T) {
	m := New().(*chip8)
	m.v[5] = 0x42
	m.v[0xa] = 0x17
	m.index = 0x321
	m.delayTimer = 9
	m.soundTimer = 3
	m.sp = 2

	tests := []struct {
		name     string
		want     uint16
		wantName string
	}{
		{"v5", 0x42, "V5"},
		{"Va", 0x17, "VA"},
		{"i", 0x321, "I"},
		{"dt", 9, "DT"},
		{"st", 3, "ST"},
		{"sp", 2, "SP"},
		{"pc", 0x200, "PC"},
	}

	for _, tt := range tests {
		val, name, ok := m.RegByName(tt.name)
		assert.True(t, ok)
		assert.Equal(t, tt.want, val)
		assert.Equal(t, tt.wantName, name)
	}

	_, _, ok := m.RegByName("bogus")
	assert.False(t, ok)
}

func TestRegisterWidth(t *testing.T) {
	m := New().(*chip8)

	assert.Equal(t, 16, m.RegisterWidth("I"))
	assert.Equal(t, 16, m.RegisterWidth("pc"))
	assert.Equal(t, 8, m.RegisterWidth("v0"))
	assert.Equal(t, 8, m.RegisterWidth("DT"))
}

func TestRegisters(t *testing.T) {
	m := New().(*chip8)
	regs := m.Registers()

	assert.Equal(t, 21, len(regs))
	assert.Equal(t, "V0", regs[0])
	assert.Equal(t, "PC", regs[20])
}

func TestDumpScreen(t *testing.T) {
	m := testMachine(t, prog(0xf029, 0xd015))
	step(t, m)
	step(t, m)

	var buf bytes.Buffer
	common.DumpScreen(m, &buf)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "####"+strings.Repeat(".", 60), lines[0])
	assert.Equal(t, "#..#"+strings.Repeat(".", 60), lines[1])
	assert.Equal(t, strings.Repeat(".", 64), lines[5])
}

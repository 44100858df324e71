package common

// Screen dimensions of the CHIP-8 framebuffer, in pixels.
const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Machine is the generic interface to the interpreter core, used by the
// hardware front ends and the debugger to abstract over the machine.
type Machine interface {
	// Memory returns the full 4KB address space.
	Memory() []byte
	// LoadROM copies a program into memory at the fixed load address.
	LoadROM(rom []byte) error
	// RunOp executes one machine cycle: tick the devices, fetch, execute,
	// tick the timers. A non-nil error is fatal to the run.
	RunOp() error

	// Screen returns the framebuffer, row-major. Dirty reports whether a
	// redraw is owed; the renderer clears it once it has painted.
	Screen() *[ScreenHeight][ScreenWidth]bool
	Dirty() bool
	ClearDirty()

	// SoundTimer returns the current sound timer; the beeper sounds while
	// it is nonzero.
	SoundTimer() uint8

	// KeyDown latches key (0x0-0xF) as pressed. ClearKeys releases all 16
	// at once; the front ends call it on key-up.
	KeyDown(key uint8)
	ClearKeys()

	AddDevice(Device)
	Devices() []Device

	AddBreakpoint(at uint16)
	Debugging() *bool
	Registers() []string
	RegByName(name string) (uint16, string, bool)
	RegisterWidth(name string) int
	Disassemble()
	DisassembleOp(at uint16) uint16
	DebugPrompt()

	// Exit runs every device's Cleanup and terminates the process.
	Exit()
}

// Device is the interface to all host-side hardware front ends.
type Device interface {
	Tick(Machine)
	Cleanup()
}

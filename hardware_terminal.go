package main

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/term/termios"
)

// Terminal renders the screen into an ANSI terminal using half-block
// characters, two framebuffer rows per text line, and reads keys from stdin
// in raw mode. Useful over SSH or wherever SDL is unwanted.

const termFrameInterval = time.Second / 60

// VT100 escapes.
const (
	termClear      = "\033[2J"
	termHome       = "\033[H"
	termHideCursor = "\033[?25l"
	termShowCursor = "\033[?25h"
)

// One character covers a pair of pixels, the top one and the bottom one.
var halfBlocks = [4]string{" ", "▀", "▄", "█"}

// The same physical layout as the SDL keypad: 1234/qwer/asdf/zxcv.
var termKeyCodes = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

type Terminal struct {
	input  *os.File
	output *os.File

	canAttr syscall.Termios
	rawAttr syscall.Termios

	lastFrame time.Time
	lastBeep  bool
	paused    bool
}

func (t *Terminal) Tick(m common.Machine) {
	if t.paused {
		return
	}

	t.readKeys(m)

	beeping := m.SoundTimer() > 0
	if beeping && !t.lastBeep {
		fmt.Fprint(t.output, "\a")
	}
	t.lastBeep = beeping

	if m.Dirty() && time.Since(t.lastFrame) >= termFrameInterval {
		t.paint(m)
		m.ClearDirty()
		t.lastFrame = time.Now()
	}
}

// Raw mode reads return immediately with whatever bytes are pending, so
// this can run on every tick without blocking the machine.
func (t *Terminal) readKeys(m common.Machine) {
	var buf [16]byte
	n, err := t.input.Read(buf[:])
	if err != nil || n == 0 {
		return
	}

	for _, b := range buf[:n] {
		if b == 0x1b || b == 0x03 { // ESC or Ctrl-C.
			m.Exit()
		}
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if key, ok := termKeyCodes[b]; ok {
			m.KeyDown(key)
		}
	}
}

func (t *Terminal) paint(m common.Machine) {
	screen := m.Screen()
	out := termHome
	for y := 0; y < common.ScreenHeight; y += 2 {
		for x := 0; x < common.ScreenWidth; x++ {
			idx := 0
			if screen[y][x] {
				idx |= 1
			}
			if screen[y+1][x] {
				idx |= 2
			}
			out += halfBlocks[idx]
		}
		out += "\r\n"
	}
	fmt.Fprint(t.output, out)
}

// Pause restores canonical mode so the debug console can read whole lines.
func (t *Terminal) Pause() {
	t.paused = true
	termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.canAttr)
	fmt.Fprint(t.output, termShowCursor)
}

// Resume switches back to raw mode and repaints on the next dirty frame.
func (t *Terminal) Resume() {
	t.paused = false
	termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.rawAttr)
	fmt.Fprint(t.output, termHideCursor)
}

func (t *Terminal) Cleanup() {
	termios.Tcsetattr(t.input.Fd(), termios.TCIFLUSH, &t.canAttr)
	fmt.Fprint(t.output, termShowCursor+termClear+termHome)
}

func NewTerminal() common.Device {
	t := new(Terminal)
	t.input = os.Stdin
	t.output = os.Stdout
	t.lastFrame = time.Now()

	// Prepare the attributes for the two terminal modes in play: the
	// canonical mode to restore, and a raw mode whose reads never block.
	termios.Tcgetattr(t.input.Fd(), &t.canAttr)
	termios.Cfmakeraw(&t.rawAttr)
	t.rawAttr.Cc[syscall.VMIN] = 0
	t.rawAttr.Cc[syscall.VTIME] = 0

	t.Resume()
	fmt.Fprint(t.output, termClear)
	return t
}

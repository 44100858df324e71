package main

import "github.com/bshepherdson/tc-chip8/common"

var deviceTypes = map[string]func() common.Device{
	"display":  func() common.Device { return NewDisplay() },
	"keypad":   func() common.Device { return new(Keypad) },
	"beeper":   func() common.Device { return NewBeeper() },
	"terminal": func() common.Device { return NewTerminal() },
	"wav":      func() common.Device { return NewWAVRecorder() },
}

var deviceDescriptions = map[string]string{
	"display":  "SDL display, 64x32 monochrome at 10x scale",
	"keypad":   "SDL keyboard mapped to the 16-key hex keypad",
	"beeper":   "SDL square wave beeper driven by the sound timer",
	"terminal": "Text mode front end, half-block rendering and raw keys",
	"wav":      "Records the beeper tone to a WAV file",
}

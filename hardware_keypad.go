package main

import (
	"time"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

type Keypad struct {
	lastPoll time.Time
}

const inputInterval time.Duration = time.Millisecond * 20

// The host rows 1234/qwer/asdf/zxcv mirror the 4x4 layout of the hex pad.
var keyCodes = map[sdl.Keycode]uint8{
	sdl.K_1: 0x1, sdl.K_2: 0x2, sdl.K_3: 0x3, sdl.K_4: 0xc,
	sdl.K_q: 0x4, sdl.K_w: 0x5, sdl.K_e: 0x6, sdl.K_r: 0xd,
	sdl.K_a: 0x7, sdl.K_s: 0x8, sdl.K_d: 0x9, sdl.K_f: 0xe,
	sdl.K_z: 0xa, sdl.K_x: 0x0, sdl.K_c: 0xb, sdl.K_v: 0xf,
}

func (k *Keypad) Tick(m common.Machine) {
	if time.Since(k.lastPoll) < inputInterval {
		return
	}

	k.lastPoll = time.Now()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.QuitEvent:
			m.Exit()
		case *sdl.KeyboardEvent:
			k.handleKey(m, t)
		}
	}
}

func (k *Keypad) handleKey(m common.Machine, ev *sdl.KeyboardEvent) {
	sym := ev.Keysym.Sym

	if ev.Type == sdl.KEYUP {
		// Any mapped key-up releases the whole latch.
		if _, ok := keyCodes[sym]; ok {
			m.ClearKeys()
		}
		return
	}

	switch {
	case sym == sdl.K_ESCAPE:
		m.Exit()
	case sdl.K_F1 <= sym && sym <= sdl.K_F12:
		fKey(m, int(sym-sdl.K_F1)+1)
	default:
		if key, ok := keyCodes[sym]; ok {
			logger.Debug("keydown", log.Uint8("key", key))
			m.KeyDown(key)
		}
	}
}

func (k *Keypad) Cleanup() {}

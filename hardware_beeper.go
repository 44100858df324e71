package main

import (
	"fmt"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleFreq    = 22050
	toneFrequency = 440
	beepBufferLen = 1024
)

// Beeper turns the machine's sound timer into a square wave tone. Samples
// are queued ahead of the device so playback never underruns mid-beep.
type Beeper struct {
	id     sdl.AudioDeviceID
	spec   sdl.AudioSpec
	buffer []uint8

	beeping bool
	phase   bool
	phaseCt int
}

func (b *Beeper) Tick(m common.Machine) {
	beeping := m.SoundTimer() > 0
	if beeping != b.beeping {
		b.beeping = beeping
		if beeping {
			sdl.ClearQueuedAudio(b.id)
			sdl.PauseAudioDevice(b.id, false)
		} else {
			sdl.PauseAudioDevice(b.id, true)
			sdl.ClearQueuedAudio(b.id)
		}
	}

	if !beeping {
		return
	}

	// Keep half a second of tone queued ahead of the device.
	for sdl.GetQueuedAudioSize(b.id) < sampleFreq/2 {
		b.fillBuffer()
		if err := sdl.QueueAudio(b.id, b.buffer); err != nil {
			panic(fmt.Errorf("failed to queue audio: %v", err))
		}
	}
}

// Writes the next stretch of square wave, carrying the phase over from the
// previous buffer.
func (b *Beeper) fillBuffer() {
	halfPeriod := sampleFreq / toneFrequency / 2
	for i := range b.buffer {
		if b.phase {
			b.buffer[i] = b.spec.Silence + 0x20
		} else {
			b.buffer[i] = b.spec.Silence - 0x20
		}

		b.phaseCt++
		if b.phaseCt >= halfPeriod {
			b.phaseCt = 0
			b.phase = !b.phase
		}
	}
}

func (b *Beeper) Cleanup() {
	sdl.CloseAudioDevice(b.id)
}

func NewBeeper() common.Device {
	b := new(Beeper)

	sdl.InitSubSystem(sdl.INIT_AUDIO)

	spec := &sdl.AudioSpec{
		Freq:     sampleFreq,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  uint16(beepBufferLen),
	}

	var actualSpec sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		panic(fmt.Errorf("failed to open audio device: %v", err))
	}

	b.id = id
	b.spec = actualSpec
	b.buffer = make([]uint8, beepBufferLen)
	return b
}

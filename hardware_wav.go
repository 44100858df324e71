package main

import (
	"os"
	"time"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/retroenv/retrogolib/log"
	"github.com/youpy/go-wav"
)

const (
	wavSampleFreq = 8000
	wavHalfPeriod = wavSampleFreq / toneFrequency / 2
)

// WAVRecorder captures the beeper tone as an 8-bit mono WAV file. Samples
// are buffered in memory in their entirety and written to disk on cleanup.
// The sound timer is sampled against the wall clock.
type WAVRecorder struct {
	filename string
	buffer   []wav.Sample

	lastSample time.Time
	phase      bool
	phaseCt    int
}

func (w *WAVRecorder) Tick(m common.Machine) {
	// Resynchronize after long stalls, like a visit to the debug console.
	if time.Since(w.lastSample) > time.Second {
		w.lastSample = time.Now()
	}

	beeping := m.SoundTimer() > 0
	interval := time.Second / wavSampleFreq
	for time.Since(w.lastSample) >= interval {
		w.lastSample = w.lastSample.Add(interval)
		w.appendSample(beeping)
	}
}

func (w *WAVRecorder) appendSample(beeping bool) {
	v := 0x80
	if beeping {
		if w.phase {
			v = 0xa0
		} else {
			v = 0x60
		}

		w.phaseCt++
		if w.phaseCt >= wavHalfPeriod {
			w.phaseCt = 0
			w.phase = !w.phase
		}
	}

	s := wav.Sample{}
	s.Values[0] = v
	s.Values[1] = v
	w.buffer = append(w.buffer, s)
}

func (w *WAVRecorder) Cleanup() {
	f, err := os.Create(w.filename)
	if err != nil {
		logger.Error("Failed to create WAV file", log.Err(err))
		return
	}
	defer f.Close()

	enc := wav.NewWriter(f, uint32(len(w.buffer)), 1, wavSampleFreq, 8)
	if enc == nil {
		logger.Error("Bad parameters for WAV encoding")
		return
	}

	logger.Info("Writing audio",
		log.String("file", w.filename),
		log.Int("samples", len(w.buffer)))
	enc.WriteSamples(w.buffer)
}

func NewWAVRecorder() common.Device {
	w := new(WAVRecorder)
	w.filename = wavFileName
	w.buffer = make([]wav.Sample, 0)
	w.lastSample = time.Now()
	return w
}

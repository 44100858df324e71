package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	displayScaleFactor  = 10
	displayWidthPixels  = common.ScreenWidth
	displayHeightPixels = common.ScreenHeight
	frameInterval       = time.Second / 60
)

type Display struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	lastFrame time.Time
}

func (d *Display) Tick(m common.Machine) {
	if !m.Dirty() || time.Since(d.lastFrame) < frameInterval {
		return
	}

	pixels, pitch, err := d.texture.Lock(nil)
	if err != nil {
		panic(fmt.Errorf("error locking texture: %v", err))
	}
	if pitch != displayWidthPixels*4 {
		panic(fmt.Errorf("unexpected pitch: %d", pitch))
	}

	d.paint(pixels, m.Screen())

	// Fully painted, now flip the texture onto the display.
	d.texture.Unlock()
	err = d.renderer.Clear()
	if err != nil {
		panic(fmt.Errorf("failed to clear renderer: %v", err))
	}
	err = d.renderer.Copy(d.texture,
		&sdl.Rect{0, 0, displayWidthPixels, displayHeightPixels},
		&sdl.Rect{0, 0, displayWidthPixels * displayScaleFactor, displayHeightPixels * displayScaleFactor})
	if err != nil {
		panic(fmt.Errorf("failed to copy texture: %v", err))
	}

	d.renderer.Present()
	d.lastFrame = time.Now()
	m.ClearDirty()
}

// Paints the entire screen into the provided pixel buffer.
func (d *Display) paint(pixels []byte, screen *[common.ScreenHeight][common.ScreenWidth]bool) {
	for y := 0; y < displayHeightPixels; y++ {
		for x := 0; x < displayWidthPixels; x++ {
			d.writePixel(pixels, screen[y][x], x, y)
		}
	}
}

// Writes a single monochrome pixel into the texture. Texture format is ARGB.
func (d *Display) writePixel(pixels []byte, on bool, x, y int) {
	offset := displayWidthPixels*4*y + 4*x

	var v byte // Defaults to 0, black, for the background.
	if on {
		v = 0xff
	}

	pixels[offset+3] = 0xff // Alpha
	pixels[offset+2] = v
	pixels[offset+1] = v
	pixels[offset] = v
}

func (d *Display) Cleanup() {
	d.texture.Destroy()
	d.renderer.Destroy()
	d.window.Destroy()
}

func NewDisplay() common.Device {
	d := new(Display)

	d.lastFrame = time.Now()

	runtime.LockOSThread() // Latch this goroutine to the same thread for SDL.
	sdl.Init(sdl.INIT_VIDEO)
	window, err := sdl.CreateWindow("tc-chip8", sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED, displayWidthPixels*displayScaleFactor, displayHeightPixels*displayScaleFactor, sdl.WINDOW_SHOWN)
	if err != nil {
		panic(fmt.Errorf("failed to create window: %v", err))
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		panic(fmt.Errorf("failed to create renderer: %v", err))
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING, displayWidthPixels, displayHeightPixels)
	if err != nil {
		panic(fmt.Errorf("failed to create texture: %v", err))
	}

	d.window = window
	d.renderer = renderer
	d.texture = texture
	return d
}

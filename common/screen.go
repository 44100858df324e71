package common

import (
	"fmt"
	"io"
)

// DumpScreen writes the framebuffer as text, one row per line, '#' for lit
// pixels. Used by the debug console and the script runner.
func DumpScreen(m Machine, w io.Writer) {
	screen := m.Screen()
	line := make([]byte, ScreenWidth)
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			if screen[y][x] {
				line[x] = '#'
			} else {
				line[x] = '.'
			}
		}
		fmt.Fprintf(w, "%s\n", line)
	}
}

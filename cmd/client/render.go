package main

import (
	"fmt"
	"strings"

	"MandelbrotExplorer/coordinator"
)

// renderBlocks scales the image down to fit columns by rows terminal cells and
// draws it with upper half blocks: the foreground is the top pixel of a cell
// and the background the bottom one.
func renderBlocks(data coordinator.ImageData, columns int, rows int) string {
	img, err := toRGBA(data)
	if err != nil || columns <= 0 || rows <= 0 {
		return ""
	}

	// Keep the aspect ratio, a cell is one pixel wide and two pixels tall
	scale := max(float64(data.Width)/float64(columns), float64(data.Height)/float64(2*rows))
	if scale < 1 {
		scale = 1
	}
	cellsX := max(1, int(float64(data.Width)/scale))
	pixelsY := max(2, int(float64(data.Height)/scale))

	var b strings.Builder
	for y := 0; y+1 < pixelsY; y += 2 {
		for x := 0; x < cellsX; x++ {
			sx := int(float64(x) * scale)
			top := img.RGBAAt(sx, int(float64(y)*scale))
			bottom := img.RGBAAt(sx, int(float64(y+1)*scale))
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		b.WriteString("\x1b[0m\n")
	}
	return b.String()
}

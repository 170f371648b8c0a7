package mandelbrot

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"MandelbrotExplorer/misc"
)

type ColorScheme int

const (
	Green ColorScheme = iota
	Rainbow
	Redish
	Blue
)

var colorSchemeNames = []string{
	"Green", "Rainbow", "Redish", "Blue",
}

func (cs ColorScheme) String() string {
	if cs < Green || cs > Blue {
		return fmt.Sprintf("ColorScheme(%d)", int(cs))
	}
	return colorSchemeNames[cs]
}

func ParseColorScheme(name string) (ColorScheme, error) {
	for i, n := range colorSchemeNames {
		if strings.EqualFold(n, name) {
			return ColorScheme(i), nil
		}
	}
	return Green, fmt.Errorf("unknown color scheme %q", name)
}

// ColorSchemes lists every scheme in display order
var ColorSchemes = []ColorScheme{Green, Rainbow, Redish, Blue}

var black = color.RGBA{A: 255}

// Color maps an iteration count to a color of the given scheme. An iteration count
// equal to max marks a point in the set.
func Color(scheme ColorScheme, n uint, max uint) color.RGBA {
	switch scheme {
	case Rainbow:
		return colorRainbow(n, max)
	case Redish:
		return colorRed(n, max)
	case Blue:
		return colorBlue(n, max)
	default:
		return colorGreen(n, max)
	}
}

// PaletteBar draws the escape colors of scheme from left to right: column x
// has the color of escape time x out of width.
func PaletteBar(scheme ColorScheme, width int, height int) *image.RGBA {
	bar := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		c := Color(scheme, uint(x), uint(width))
		for y := 0; y < height; y++ {
			bar.SetRGBA(x, y, c)
		}
	}
	return bar
}

// HSV converts hue [0, 360), saturation [0, 1] and value [0, 1] to RGB
func HSV(h float64, s float64, v float64) color.RGBA {
	rgb := func(r, g, b float64) color.RGBA {
		return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
	}

	if s <= 0 {
		return rgb(v, v, v)
	}

	hh := math.Mod(h, 360) / 60
	region := int(hh)
	ff := hh - float64(region)

	p := v * (1 - s)
	q := v * (1 - s*ff)
	t := v * (1 - s*(1-ff))

	switch region {
	case 0:
		return rgb(v, t, p)
	case 1:
		return rgb(q, v, p)
	case 2:
		return rgb(p, v, t)
	case 3:
		return rgb(p, q, v)
	case 4:
		return rgb(t, p, v)
	default:
		return rgb(v, p, q)
	}
}

// black - green - white
func colorGreen(n uint, max uint) color.RGBA {
	if n >= max {
		return black
	}

	ratio := 1.0
	if max > 1 {
		ratio = float64(n) / float64(max-1)
	}
	level := misc.LerpUint8(0, 255, math.Sqrt(ratio))

	var rb uint8
	if ratio > 0.5 {
		rb = misc.LerpUint8(0, 180, (ratio-0.5)/0.5)
	}

	return color.RGBA{R: rb, G: level, B: rb, A: 255}
}

func colorRainbow(n uint, max uint) color.RGBA {
	if n >= max {
		return black
	}
	return HSV(300*float64(n)/float64(max), 1, 1)
}

// dark red, then red - yellow
func colorRed(n uint, max uint) color.RGBA {
	limit := max / 2
	return rampThenHue(n, max, limit, 0, func(level uint8) color.RGBA {
		return color.RGBA{R: level, A: 255}
	})
}

// dark blue, then blue - purple
func colorBlue(n uint, max uint) color.RGBA {
	limit := max / 3
	return rampThenHue(n, max, limit, 240, func(level uint8) color.RGBA {
		return color.RGBA{B: level, A: 255}
	})
}

// rampThenHue brightens a single channel up to limit and sweeps 60 degrees of hue
// starting at hue afterwards
func rampThenHue(n uint, max uint, limit uint, hue float64, ramp func(level uint8) color.RGBA) color.RGBA {
	if n >= max {
		return black
	}
	if n < limit {
		ratio := float64(n) / float64(limit)
		return ramp(misc.LerpUint8(0, 255, math.Sqrt(ratio)))
	}

	ratio := float64(n-limit) / float64(max-limit)
	return HSV(hue+60*misc.Clamp01(ratio), 1, 1)
}

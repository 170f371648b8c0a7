package transform

import (
	"fmt"
	"math"
)

// defaultScale is the share of the viewport width that maps to one plane unit
// when the view is reset, chosen so the whole set is visible.
const defaultScale = 0.28

// Transform converts between pixel coordinates and points on the complex plane.
//
// Pixel rows grow downward and so does the imaginary part; every method uses
// this convention. A Transform is a plain value, copying it takes a snapshot.
type Transform struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
	Width   uint
	Height  uint
}

func NewTransform(width uint, height uint) Transform {
	t := Transform{
		Width:  width,
		Height: height,
	}
	t.Reset()
	return t
}

func (t *Transform) String() string {
	output := "{Transform "
	output += fmt.Sprintf("OffsetX: %f ", t.OffsetX)
	output += fmt.Sprintf("OffsetY: %f ", t.OffsetY)
	output += fmt.Sprintf("Scale: %f ", t.Scale)
	output += fmt.Sprintf("Viewport: %dx%d ", t.Width, t.Height)
	output += fmt.Sprintf("Zoom: %g}", t.ZoomFactor())
	return output
}

// Reset restores the default view for the current viewport
func (t *Transform) Reset() {
	t.Scale = float64(t.Width) * defaultScale
	t.OffsetX = float64(t.Width) * 0.7
	t.OffsetY = float64(t.Height) * 0.5
}

func (t Transform) PixelToComplex(x int, y int) complex128 {
	return complex(
		(float64(x)-t.OffsetX)/t.Scale,
		(float64(y)-t.OffsetY)/t.Scale,
	)
}

// ComplexToPixel is the inverse of PixelToComplex, rounded to the nearest pixel.
func (t Transform) ComplexToPixel(z complex128) (int, int) {
	x := real(z)*t.Scale + t.OffsetX
	y := imag(z)*t.Scale + t.OffsetY
	return int(math.Round(x)), int(math.Round(y))
}

// Zoom multiplies the scale by factor while keeping the point at the center of
// the viewport in place. The factor must be positive.
func (t *Transform) Zoom(factor float64) {
	center := t.PixelToComplex(t.center())
	t.Scale *= factor
	t.CenterAt(center)
}

// CenterAt moves the view so z lands on the center pixel without changing the scale
func (t *Transform) CenterAt(z complex128) {
	cx, cy := t.center()
	t.OffsetX = float64(cx) - real(z)*t.Scale
	t.OffsetY = float64(cy) - imag(z)*t.Scale
}

// Valid reports whether the scale is positive and finite and the offsets are finite
func (t Transform) Valid() bool {
	finite := func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return t.Scale > 0 && finite(t.Scale) && finite(t.OffsetX) && finite(t.OffsetY)
}

func (t Transform) ZoomFactor() float64 {
	return t.Scale / (float64(t.Width) * defaultScale)
}

func (t Transform) center() (int, int) {
	return int(t.Width / 2), int(t.Height / 2)
}

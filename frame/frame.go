package frame

import (
	"fmt"
	"iter"
)

// Pixel holds the escape time of one pixel and its histogram equalized value
type Pixel struct {
	Iterations          uint
	IterationsEqualized uint
}

// Frame is a row-major grid of pixels generated for one view. The pixel at
// (x, y) is stored at index x + y*Width.
type Frame struct {
	Height        uint
	MaxIterations uint
	Width         uint

	pixels []Pixel
}

func NewFrame(width uint, height uint, maxIterations uint) *Frame {
	return &Frame{
		Height:        height,
		MaxIterations: maxIterations,
		Width:         width,
		pixels:        make([]Pixel, width*height),
	}
}

func (f *Frame) String() string {
	output := "{Frame "
	output += fmt.Sprintf("Width: %d ", f.Width)
	output += fmt.Sprintf("Height: %d ", f.Height)
	output += fmt.Sprintf("MaxIterations: %d}", f.MaxIterations)
	return output
}

func (f *Frame) index(x uint, y uint) int {
	return int(x + y*f.Width)
}

func (f *Frame) CellAt(x uint, y uint) Pixel {
	return f.pixels[f.index(x, y)]
}

// Cells yields every pixel with its index in row-major order
func (f *Frame) Cells() iter.Seq2[int, Pixel] {
	return func(yield func(int, Pixel) bool) {
		for i, p := range f.pixels {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Iterations returns the raw escape times of all pixels in row-major order
func (f *Frame) Iterations() []uint {
	iterations := make([]uint, len(f.pixels))
	for i, p := range f.pixels {
		iterations[i] = p.Iterations
	}
	return iterations
}

// Equalized returns the equalized escape times of all pixels in row-major order
func (f *Frame) Equalized() []uint {
	equalized := make([]uint, len(f.pixels))
	for i, p := range f.pixels {
		equalized[i] = p.IterationsEqualized
	}
	return equalized
}

// SetRows overwrites the raw escape times of whole rows starting at row start.
// len(iterations) must be a multiple of Width and fit inside the frame.
func (f *Frame) SetRows(start uint, iterations []uint) error {
	if f.Width == 0 || uint(len(iterations))%f.Width != 0 {
		return fmt.Errorf("%d values do not fill whole rows of width %d", len(iterations), f.Width)
	}
	rows := uint(len(iterations)) / f.Width
	if start+rows > f.Height {
		return fmt.Errorf("rows [%d, %d) exceed frame height %d", start, start+rows, f.Height)
	}

	offset := f.index(0, start)
	for i, v := range iterations {
		if v > f.MaxIterations {
			return fmt.Errorf("iteration count %d at index %d exceeds %d", v, offset+i, f.MaxIterations)
		}
	}
	for i, v := range iterations {
		f.pixels[offset+i].Iterations = v
	}
	return nil
}

// ApplyEqualized sets every pixel's equalized value to lookup[Iterations].
// lookup must have MaxIterations+1 entries.
func (f *Frame) ApplyEqualized(lookup []uint) {
	for i := range f.pixels {
		f.pixels[i].IterationsEqualized = lookup[f.pixels[i].Iterations]
	}
}

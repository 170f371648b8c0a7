package coordinator

import (
	"fmt"

	"MandelbrotExplorer/mandelbrot"
)

type EventKind int

const (
	EventIdle EventKind = iota
	EventZoom
	EventCenter
	EventReset
	EventChangeIterations
	EventScheme
	EventToggleHistogram
	EventInfo
)

func (k EventKind) String() string {
	names := []string{
		"Idle", "Zoom", "Center", "Reset", "ChangeIterations", "Scheme", "ToggleHistogram", "Info",
	}
	if k < EventIdle || int(k) >= len(names) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return names[k]
}

// Event is one user action on the session. Which fields matter depends on Kind:
// Factor for Zoom and ChangeIterations, X and Y for Center and Info, Scheme for Scheme.
//
// A Zoom with a factor of zero or less resets the view and the iteration budget.
// Non-finite factors, and zooms or centers that would leave the scale or the
// offsets outside the finite range, are rejected without changing the view.
type Event struct {
	Factor float64
	Kind   EventKind
	Scheme mandelbrot.ColorScheme
	X      int
	Y      int
}

func (e Event) String() string {
	switch e.Kind {
	case EventZoom, EventChangeIterations:
		return fmt.Sprintf("{%s %g}", e.Kind, e.Factor)
	case EventCenter, EventInfo:
		return fmt.Sprintf("{%s (%d, %d)}", e.Kind, e.X, e.Y)
	case EventScheme:
		return fmt.Sprintf("{%s %s}", e.Kind, e.Scheme)
	default:
		return fmt.Sprintf("{%s}", e.Kind)
	}
}

// DrawSettings selects how iteration counts become colors. It is replaced
// wholesale on every change and passed by value into rendering.
type DrawSettings struct {
	Scheme       mandelbrot.ColorScheme
	UseHistogram bool
}

type Point struct {
	X int
	Y int
}

type Viewport struct {
	Height uint
	Width  uint
}

// PointInfo describes one pixel of the current frame
type PointInfo struct {
	Im                  float64
	Iterations          uint
	IterationsEqualized uint
	Re                  float64
	X                   int
	Y                   int
}

// FrameInfo summarizes the session after an event
type FrameInfo struct {
	CenterIm      float64
	CenterRe      float64
	Draw          DrawSettings
	Error         string
	Frames        uint64
	Height        uint
	MaxIterations uint
	Point         PointInfo
	Stale         bool
	Superseded    bool
	Width         uint
	ZoomFactor    float64
}

func (fi FrameInfo) String() string {
	output := "{FrameInfo "
	output += fmt.Sprintf("Viewport: %dx%d ", fi.Width, fi.Height)
	output += fmt.Sprintf("MaxIterations: %d ", fi.MaxIterations)
	output += fmt.Sprintf("Center: %g%+gi ", fi.CenterRe, fi.CenterIm)
	output += fmt.Sprintf("Zoom: %g ", fi.ZoomFactor)
	output += fmt.Sprintf("Scheme: %s ", fi.Draw.Scheme)
	output += fmt.Sprintf("UseHistogram: %t ", fi.Draw.UseHistogram)
	output += fmt.Sprintf("Frames: %d", fi.Frames)
	if fi.Stale {
		output += " Stale"
	}
	if fi.Superseded {
		output += " Superseded"
	}
	if fi.Error != "" {
		output += fmt.Sprintf(" Error: %s", fi.Error)
	}
	output += "}"
	return output
}

// FrameData carries the raw and equalized escape times of the current frame
type FrameData struct {
	Equalized  []uint
	Info       FrameInfo
	Iterations []uint
}

// ImageData is the current frame colored with the session's draw settings, as
// RGBA bytes in row-major order
type ImageData struct {
	Height int
	Pix    []byte
	Width  int
}

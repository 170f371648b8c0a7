package mandelbrot

import (
	"fmt"
	"runtime"
)

const (
	DefaultHeight        = 600
	DefaultMaxIterations = 150
	DefaultWidth         = 800

	// Upper bounds that keep one frame and its histogram in memory
	MaxIterationsLimit = 1 << 20
	MaxViewportPixels  = 4096 * 4096
)

// CheckViewport reports an error for an empty viewport or one with more than
// MaxViewportPixels pixels
func CheckViewport(width uint, height uint) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("viewport %dx%d is empty", width, height)
	}
	if height > MaxViewportPixels/width {
		return fmt.Errorf("viewport %dx%d exceeds %d pixels", width, height, MaxViewportPixels)
	}
	return nil
}

// CheckMaxIterations reports an error for a budget of zero or above MaxIterationsLimit
func CheckMaxIterations(maxIterations uint) error {
	if maxIterations == 0 || maxIterations > MaxIterationsLimit {
		return fmt.Errorf("max iterations %d outside [1, %d]", maxIterations, MaxIterationsLimit)
	}
	return nil
}

// Settings describes the initial view of an exploration session
type Settings struct {
	ColorScheme   string
	Height        uint
	MaxIterations uint
	UseHistogram  bool
	Width         uint
	Workers       int

	Scheme ColorScheme `json:"-"`
}

func (s *Settings) String() string {
	output := "{MandelbrotSettings "
	output += fmt.Sprintf("Viewport: %dx%d ", s.Width, s.Height)
	output += fmt.Sprintf("MaxIterations: %d ", s.MaxIterations)
	output += fmt.Sprintf("Workers: %d ", s.Workers)
	output += fmt.Sprintf("Scheme: %s ", s.Scheme)
	output += fmt.Sprintf("UseHistogram: %t}", s.UseHistogram)
	return output
}

// Verify fills in defaults for missing values. An unknown color scheme is an error.
func (s *Settings) Verify() error {
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Workers <= 0 {
		s.Workers = runtime.GOMAXPROCS(0)
	}
	// s.UseHistogram defaults to false already

	if err := CheckViewport(s.Width, s.Height); err != nil {
		return err
	}
	if err := CheckMaxIterations(s.MaxIterations); err != nil {
		return err
	}

	s.Scheme = Green
	if s.ColorScheme != "" {
		scheme, err := ParseColorScheme(s.ColorScheme)
		if err != nil {
			return err
		}
		s.Scheme = scheme
	}
	s.ColorScheme = s.Scheme.String()

	return nil
}

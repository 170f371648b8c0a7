// Package coordinator owns one exploration session: the view, the iteration
// budget, the current frame and how it is drawn. It applies user events, asks
// the generator for new frames and exposes all of it as an rpc object.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"

	"MandelbrotExplorer/frame"
	"MandelbrotExplorer/generator"
	"MandelbrotExplorer/histogram"
	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/misc"
	"MandelbrotExplorer/transform"
)

// ErrSuperseded is returned when a newer event cancelled the generation started
// for this one. The newer event renders the combined state.
var ErrSuperseded = errors.New("superseded by a newer event")

type Coordinator struct {
	cancel        context.CancelFunc
	cancelMutex   sync.Mutex
	closeOnce     sync.Once
	done          chan bool
	draw          DrawSettings
	frame         *frame.Frame
	generate      func(ctx context.Context, t transform.Transform, maxIterations uint, f *frame.Frame) error
	generator     *generator.Generator
	lastError     error
	logFile       *os.File
	logger        bslogger.Logger
	maxIterations uint
	mutex         sync.Mutex
	settings      Settings
	stale         bool
	transform     transform.Transform
}

// NewCoordinator starts a session with the given settings and renders the first frame
func NewCoordinator(settings Settings) (*Coordinator, error) {
	if err := settings.Verify(); err != nil {
		return nil, err
	}

	logFile, err := misc.OpenLogFile(settings.LogFile)
	if err != nil {
		return nil, err
	}

	ms := settings.MandelbrotSettings
	c := &Coordinator{
		done: make(chan bool),
		draw: DrawSettings{
			Scheme:       ms.Scheme,
			UseHistogram: ms.UseHistogram,
		},
		frame:         frame.NewFrame(ms.Width, ms.Height, ms.MaxIterations),
		generator:     generator.NewGenerator(ms.Workers, misc.NewLogger("Generator", settings.Verbosity, logFile)),
		logFile:       logFile,
		logger:        misc.NewLogger("Coordinator", settings.Verbosity, logFile),
		maxIterations: ms.MaxIterations,
		settings:      settings,
		stale:         true,
		transform:     transform.NewTransform(ms.Width, ms.Height),
	}
	c.generate = c.generator.Generate
	c.logger.Debug(settings.String())

	if err := c.regenerate(context.Background()); err != nil {
		c.Close()
		return nil, err
	}

	go c.tickers()

	return c, nil
}

// Close stops the generator's workers. The coordinator must not be used
// afterwards; further calls to Close do nothing.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.cancelMutex.Lock()
		if c.cancel != nil {
			c.cancel()
		}
		c.cancelMutex.Unlock()

		close(c.done)

		c.mutex.Lock()
		defer c.mutex.Unlock()
		c.generator.Close()
		if c.logFile != nil {
			misc.CheckError(c.logFile.Close(), c.logger, misc.Warning)
			c.logFile = nil
		}
	})
}

func (c *Coordinator) tickers() {
	heartBeat := time.NewTicker(30 * time.Second)
	defer heartBeat.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-heartBeat.C:
			frames, tasks := c.generator.Stats()
			c.logger.Infof("Frames [Generated: %d] Tasks [Completed: %d] | Workers: %d", frames, tasks, c.generator.Workers())
		}
	}
}

// supersede cancels the generation of the previous event and returns the context
// for the next one
func (c *Coordinator) supersede(parent context.Context) context.Context {
	c.cancelMutex.Lock()
	defer c.cancelMutex.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	return ctx
}

// Apply changes the session according to event and regenerates the frame when
// the view or the iteration budget changed. If generation fails the previous
// frame is kept and the error returned.
func (c *Coordinator) Apply(ctx context.Context, event Event) (FrameInfo, error) {
	ctx = c.supersede(ctx)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.logger.Debugf("Applying event %s", event)

	var point PointInfo
	switch event.Kind {
	case EventIdle:
	case EventZoom:
		if !finite(event.Factor) {
			return c.info(), fmt.Errorf("zoom factor must be finite, got %g", event.Factor)
		}
		if event.Factor > 0 {
			zoomed := c.transform
			zoomed.Zoom(event.Factor)
			if !zoomed.Valid() {
				return c.info(), fmt.Errorf("zoom by %g leaves the representable range", event.Factor)
			}
			c.transform = zoomed
			c.logger.Infof("Zoom: %g", c.transform.ZoomFactor())
		} else {
			c.transform.Reset()
			c.maxIterations = c.settings.MandelbrotSettings.MaxIterations
		}
		c.stale = true
	case EventCenter:
		centered := c.transform
		centered.CenterAt(c.transform.PixelToComplex(event.X, event.Y))
		if !centered.Valid() {
			return c.info(), fmt.Errorf("centering at pixel (%d, %d) leaves the representable range", event.X, event.Y)
		}
		c.transform = centered
		c.stale = true
	case EventReset:
		c.transform.Reset()
		c.stale = true
	case EventChangeIterations:
		if event.Factor <= 0 || !finite(event.Factor) {
			return c.info(), fmt.Errorf("iteration factor must be positive, got %g", event.Factor)
		}
		next := math.Max(1, math.Round(float64(c.maxIterations)*event.Factor))
		if next > mandelbrot.MaxIterationsLimit {
			return c.info(), fmt.Errorf("max iterations %g exceed the limit of %d", next, mandelbrot.MaxIterationsLimit)
		}
		c.maxIterations = uint(next)
		c.logger.Infof("Max iterations: %d", c.maxIterations)
		c.stale = true
	case EventScheme:
		if event.Scheme < mandelbrot.Green || event.Scheme > mandelbrot.Blue {
			return c.info(), fmt.Errorf("unknown color scheme %s", event.Scheme)
		}
		c.draw = DrawSettings{Scheme: event.Scheme, UseHistogram: c.draw.UseHistogram}
	case EventToggleHistogram:
		c.draw = DrawSettings{Scheme: c.draw.Scheme, UseHistogram: !c.draw.UseHistogram}
	case EventInfo:
	default:
		return c.info(), fmt.Errorf("unknown event %s", event.Kind)
	}

	var err error
	if c.stale {
		err = c.regenerate(ctx)
	}

	if event.Kind == EventInfo {
		var infoErr error
		point, infoErr = c.pointInfo(event.X, event.Y)
		if infoErr != nil {
			return c.info(), infoErr
		}
		c.logger.Infof("Complex: [%g, %gi], iterations: %d", point.Re, point.Im, point.Iterations)
	}

	info := c.info()
	info.Point = point
	return info, err
}

// regenerate computes a frame for the current view and budget. The new frame
// replaces the current one only when generation succeeded.
func (c *Coordinator) regenerate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ErrSuperseded
	}

	target := c.frame
	if target.MaxIterations != c.maxIterations || target.Width != c.transform.Width || target.Height != c.transform.Height {
		target = frame.NewFrame(c.transform.Width, c.transform.Height, c.maxIterations)
	}

	err := c.generate(ctx, c.transform, c.maxIterations, target)
	if errors.Is(err, context.Canceled) {
		c.logger.Debug("Generation superseded")
		return ErrSuperseded
	}
	if err != nil {
		c.lastError = err
		c.logger.Errorf("Keeping the last good frame: %s", err)
		return err
	}

	if histogram.Equalize(target) {
		c.logger.Debug("Histogram is degenerate, equalized values equal raw values")
	}
	c.frame = target
	c.lastError = nil
	c.stale = false
	return nil
}

func (c *Coordinator) pointInfo(x int, y int) (PointInfo, error) {
	if x < 0 || y < 0 || x >= int(c.frame.Width) || y >= int(c.frame.Height) {
		return PointInfo{}, fmt.Errorf("pixel (%d, %d) is outside the %dx%d viewport", x, y, c.frame.Width, c.frame.Height)
	}
	z := c.transform.PixelToComplex(x, y)
	p := c.frame.CellAt(uint(x), uint(y))
	return PointInfo{
		Im:                  imag(z),
		Iterations:          p.Iterations,
		IterationsEqualized: p.IterationsEqualized,
		Re:                  real(z),
		X:                   x,
		Y:                   y,
	}, nil
}

func (c *Coordinator) info() FrameInfo {
	center := c.transform.PixelToComplex(int(c.transform.Width/2), int(c.transform.Height/2))
	frames, _ := c.generator.Stats()
	info := FrameInfo{
		CenterIm:      imag(center),
		CenterRe:      real(center),
		Draw:          c.draw,
		Frames:        frames,
		Height:        c.frame.Height,
		MaxIterations: c.frame.MaxIterations,
		Stale:         c.stale,
		Width:         c.frame.Width,
		ZoomFactor:    c.transform.ZoomFactor(),
	}
	if c.lastError != nil {
		info.Error = c.lastError.Error()
	}
	return info
}

// Summary describes the session without changing it
func (c *Coordinator) Summary() FrameInfo {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.info()
}

// ResizeViewport replaces the view and the frame for a new viewport and renders it
func (c *Coordinator) ResizeViewport(ctx context.Context, width uint, height uint) (FrameInfo, error) {
	if err := mandelbrot.CheckViewport(width, height); err != nil {
		return c.Summary(), err
	}
	ctx = c.supersede(ctx)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.transform = transform.NewTransform(width, height)
	c.stale = true
	err := c.regenerate(ctx)
	return c.info(), err
}

// Render colors the current frame with draw
func (c *Coordinator) Render(draw DrawSettings) *image.RGBA {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return colorize(c.frame, draw)
}

// RenderCurrent colors the current frame with the session's own draw settings
func (c *Coordinator) RenderCurrent() (*image.RGBA, DrawSettings) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return colorize(c.frame, c.draw), c.draw
}

// paletteBars draws one bar per color scheme, in the order of mandelbrot.ColorSchemes
func paletteBars(width uint, height uint) ([]*image.RGBA, error) {
	if err := mandelbrot.CheckViewport(width, height); err != nil {
		return nil, err
	}
	if err := mandelbrot.CheckViewport(width, height*uint(len(mandelbrot.ColorSchemes))); err != nil {
		return nil, err
	}
	bars := make([]*image.RGBA, len(mandelbrot.ColorSchemes))
	for i, scheme := range mandelbrot.ColorSchemes {
		bars[i] = mandelbrot.PaletteBar(scheme, int(width), int(height))
	}
	return bars, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func colorize(f *frame.Frame, draw DrawSettings) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(f.Width), int(f.Height)))
	width := int(f.Width)
	for i, p := range f.Cells() {
		n := p.Iterations
		if draw.UseHistogram {
			n = p.IterationsEqualized
		}
		img.SetRGBA(i%width, i/width, mandelbrot.Color(draw.Scheme, n, f.MaxIterations))
	}
	return img
}

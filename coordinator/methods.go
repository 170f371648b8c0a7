package coordinator

import (
	"context"
	"errors"

	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/misc"
)

// apply runs an event for an rpc caller. A superseded event is not an error for
// the caller, the reply just says so.
func (c *Coordinator) apply(event Event, reply *FrameInfo) error {
	info, err := c.Apply(context.Background(), event)
	if errors.Is(err, ErrSuperseded) {
		info.Superseded = true
		err = nil
	}
	*reply = info
	return err
}

func (c *Coordinator) Zoom(factor float64, reply *FrameInfo) error {
	return c.apply(Event{Kind: EventZoom, Factor: factor}, reply)
}

func (c *Coordinator) Center(point Point, reply *FrameInfo) error {
	return c.apply(Event{Kind: EventCenter, X: point.X, Y: point.Y}, reply)
}

func (c *Coordinator) Reset(nothing misc.Nothing, reply *FrameInfo) error {
	return c.apply(Event{Kind: EventReset}, reply)
}

func (c *Coordinator) ChangeIterations(factor float64, reply *FrameInfo) error {
	return c.apply(Event{Kind: EventChangeIterations, Factor: factor}, reply)
}

func (c *Coordinator) SetScheme(name string, reply *FrameInfo) error {
	scheme, err := mandelbrot.ParseColorScheme(name)
	if err != nil {
		*reply = c.Summary()
		return err
	}
	return c.apply(Event{Kind: EventScheme, Scheme: scheme}, reply)
}

func (c *Coordinator) ToggleHistogram(nothing misc.Nothing, reply *FrameInfo) error {
	return c.apply(Event{Kind: EventToggleHistogram}, reply)
}

func (c *Coordinator) Info(point Point, reply *FrameInfo) error {
	return c.apply(Event{Kind: EventInfo, X: point.X, Y: point.Y}, reply)
}

func (c *Coordinator) Status(nothing misc.Nothing, reply *FrameInfo) error {
	*reply = c.Summary()
	return nil
}

func (c *Coordinator) Resize(viewport Viewport, reply *FrameInfo) error {
	info, err := c.ResizeViewport(context.Background(), viewport.Width, viewport.Height)
	if errors.Is(err, ErrSuperseded) {
		info.Superseded = true
		err = nil
	}
	*reply = info
	return err
}

// Frame sends the escape times of the current frame
func (c *Coordinator) Frame(nothing misc.Nothing, reply *FrameData) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	reply.Info = c.info()
	reply.Iterations = c.frame.Iterations()
	reply.Equalized = c.frame.Equalized()
	return nil
}

// Image sends the current frame colored with the session's draw settings
func (c *Coordinator) Image(nothing misc.Nothing, reply *ImageData) error {
	img, _ := c.RenderCurrent()
	reply.Width = img.Rect.Dx()
	reply.Height = img.Rect.Dy()
	reply.Pix = img.Pix
	return nil
}

// Palettes sends one bar per color scheme. Column x of a bar has the color of
// escape time x with a budget of the bar width, so in-set black never shows.
// A zero width uses the viewport width and a zero height 100 pixels.
func (c *Coordinator) Palettes(size Viewport, reply *[]ImageData) error {
	if size.Width == 0 {
		size.Width = c.Summary().Width
	}
	if size.Height == 0 {
		size.Height = 100
	}

	bars, err := paletteBars(size.Width, size.Height)
	if err != nil {
		return err
	}
	*reply = make([]ImageData, len(bars))
	for i, bar := range bars {
		(*reply)[i] = ImageData{Height: bar.Rect.Dy(), Pix: bar.Pix, Width: bar.Rect.Dx()}
	}
	return nil
}

func (c *Coordinator) RollCall(nothing misc.Nothing, present *bool) error {
	*present = true
	return nil
}

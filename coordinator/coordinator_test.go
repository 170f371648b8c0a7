package coordinator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"MandelbrotExplorer/frame"
	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/misc"
	"MandelbrotExplorer/rpc"
	"MandelbrotExplorer/transform"
)

func newCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(Settings{
		MandelbrotSettings: mandelbrot.Settings{
			Height:        30,
			MaxIterations: 50,
			Width:         40,
			Workers:       3,
		},
		Verbosity: "Minimal",
	})
	if err != nil {
		t.Fatalf("NewCoordinator() = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNewCoordinator(t *testing.T) {
	c := newCoordinator(t)
	info := c.Summary()

	if info.Width != 40 || info.Height != 30 || info.MaxIterations != 50 {
		t.Errorf("viewport = %dx%d/%d, want 40x30/50", info.Width, info.Height, info.MaxIterations)
	}
	if info.Frames != 1 {
		t.Errorf("Frames = %d, want 1", info.Frames)
	}
	if info.Stale || info.Error != "" {
		t.Errorf("fresh session is stale=%t error=%q", info.Stale, info.Error)
	}
	if info.ZoomFactor != 1 {
		t.Errorf("ZoomFactor = %g, want 1", info.ZoomFactor)
	}
	if info.Draw != (DrawSettings{Scheme: mandelbrot.Green}) {
		t.Errorf("Draw = %+v, want Green without histogram", info.Draw)
	}
}

func TestNewCoordinatorBadScheme(t *testing.T) {
	_, err := NewCoordinator(Settings{
		MandelbrotSettings: mandelbrot.Settings{ColorScheme: "plaid"},
		Verbosity:          "Minimal",
	})
	if err == nil {
		t.Fatal("NewCoordinator() with an unknown scheme returned no error")
	}
}

func TestApplyZoom(t *testing.T) {
	c := newCoordinator(t)
	ctx := context.Background()

	info, err := c.Apply(ctx, Event{Kind: EventZoom, Factor: 2})
	if err != nil {
		t.Fatalf("Apply(Zoom 2) = %v", err)
	}
	if info.ZoomFactor != 2 {
		t.Errorf("ZoomFactor = %g, want 2", info.ZoomFactor)
	}
	if info.Frames != 2 {
		t.Errorf("Frames = %d, want 2", info.Frames)
	}

	if _, err := c.Apply(ctx, Event{Kind: EventChangeIterations, Factor: 2}); err != nil {
		t.Fatalf("Apply(ChangeIterations 2) = %v", err)
	}

	// A zoom of zero resets the view and the iteration budget
	info, err = c.Apply(ctx, Event{Kind: EventZoom, Factor: 0})
	if err != nil {
		t.Fatalf("Apply(Zoom 0) = %v", err)
	}
	if info.ZoomFactor != 1 || info.MaxIterations != 50 {
		t.Errorf("after Zoom 0: zoom %g, max %d, want 1, 50", info.ZoomFactor, info.MaxIterations)
	}
}

func TestApplyCenter(t *testing.T) {
	c := newCoordinator(t)
	want := transform.NewTransform(40, 30).PixelToComplex(5, 25)

	info, err := c.Apply(context.Background(), Event{Kind: EventCenter, X: 5, Y: 25})
	if err != nil {
		t.Fatalf("Apply(Center) = %v", err)
	}
	if math.Abs(info.CenterRe-real(want)) > 1e-9 || math.Abs(info.CenterIm-imag(want)) > 1e-9 {
		t.Errorf("center = %g%+gi, want %g", info.CenterRe, info.CenterIm, want)
	}
	if info.ZoomFactor != 1 {
		t.Errorf("ZoomFactor = %g, want 1", info.ZoomFactor)
	}
}

func TestApplyChangeIterations(t *testing.T) {
	tests := []struct {
		factor float64
		want   uint
	}{
		{2, 100},
		{0.5, 50},
		{0.3, 15},
		{0.001, 1},
	}

	c := newCoordinator(t)
	for _, tt := range tests {
		info, err := c.Apply(context.Background(), Event{Kind: EventChangeIterations, Factor: tt.factor})
		if err != nil {
			t.Fatalf("Apply(ChangeIterations %g) = %v", tt.factor, err)
		}
		if info.MaxIterations != tt.want {
			t.Errorf("ChangeIterations(%g): MaxIterations = %d, want %d", tt.factor, info.MaxIterations, tt.want)
		}
	}

	if _, err := c.Apply(context.Background(), Event{Kind: EventChangeIterations, Factor: -1}); err == nil {
		t.Error("Apply(ChangeIterations -1) returned no error")
	}
}

func TestApplyDrawSettings(t *testing.T) {
	c := newCoordinator(t)
	ctx := context.Background()

	info, err := c.Apply(ctx, Event{Kind: EventScheme, Scheme: mandelbrot.Blue})
	if err != nil {
		t.Fatalf("Apply(Scheme) = %v", err)
	}
	info, err = c.Apply(ctx, Event{Kind: EventToggleHistogram})
	if err != nil {
		t.Fatalf("Apply(ToggleHistogram) = %v", err)
	}
	if info.Draw != (DrawSettings{Scheme: mandelbrot.Blue, UseHistogram: true}) {
		t.Errorf("Draw = %+v, want Blue with histogram", info.Draw)
	}
	// Drawing changes never regenerate
	if info.Frames != 1 {
		t.Errorf("Frames = %d, want 1", info.Frames)
	}

	if _, err := c.Apply(ctx, Event{Kind: EventScheme, Scheme: mandelbrot.ColorScheme(42)}); err == nil {
		t.Error("Apply(Scheme 42) returned no error")
	}
}

func TestApplyInfo(t *testing.T) {
	c := newCoordinator(t)
	tr := transform.NewTransform(40, 30)
	x, y := tr.ComplexToPixel(complex(-0.5, 0))

	info, err := c.Apply(context.Background(), Event{Kind: EventInfo, X: x, Y: y})
	if err != nil {
		t.Fatalf("Apply(Info) = %v", err)
	}
	if info.Point.Iterations != 50 {
		t.Errorf("Iterations at %d, %d = %d, want 50", x, y, info.Point.Iterations)
	}
	z := tr.PixelToComplex(x, y)
	if info.Point.Re != real(z) || info.Point.Im != imag(z) {
		t.Errorf("Point = %g%+gi, want %g", info.Point.Re, info.Point.Im, z)
	}

	for _, p := range []Point{{-1, 0}, {0, -1}, {40, 0}, {0, 30}} {
		if _, err := c.Apply(context.Background(), Event{Kind: EventInfo, X: p.X, Y: p.Y}); err == nil {
			t.Errorf("Apply(Info %v) returned no error", p)
		}
	}
}

func TestApplyKeepsLastGoodFrame(t *testing.T) {
	c := newCoordinator(t)
	before := c.Render(DrawSettings{Scheme: mandelbrot.Rainbow})

	failure := errors.New("worker lost")
	c.generate = func(ctx context.Context, tr transform.Transform, maxIterations uint, f *frame.Frame) error {
		return failure
	}

	info, err := c.Apply(context.Background(), Event{Kind: EventZoom, Factor: 3})
	if !errors.Is(err, failure) {
		t.Fatalf("Apply(Zoom) = %v, want %v", err, failure)
	}
	if !info.Stale || info.Error != failure.Error() {
		t.Errorf("info stale=%t error=%q, want stale with %q", info.Stale, info.Error, failure)
	}

	after := c.Render(DrawSettings{Scheme: mandelbrot.Rainbow})
	if !cmp.Equal(before.Pix, after.Pix) {
		t.Fatal("image changed after a failed generation")
	}

	// The next event retries the stale view
	c.generate = c.generator.Generate
	info, err = c.Apply(context.Background(), Event{Kind: EventIdle})
	if err != nil {
		t.Fatalf("Apply(Idle) = %v", err)
	}
	if info.Stale || info.Error != "" || math.Abs(info.ZoomFactor-3) > 1e-12 {
		t.Errorf("after retry: stale=%t error=%q zoom=%g", info.Stale, info.Error, info.ZoomFactor)
	}
}

func TestApplySuperseded(t *testing.T) {
	c := newCoordinator(t)

	// Only the first generation blocks, calls are serialized by the session
	started := make(chan bool)
	blocked := false
	c.generate = func(ctx context.Context, tr transform.Transform, maxIterations uint, f *frame.Frame) error {
		if blocked {
			return c.generator.Generate(ctx, tr, maxIterations, f)
		}
		blocked = true
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}

	firstDone := make(chan error)
	go func() {
		_, err := c.Apply(context.Background(), Event{Kind: EventZoom, Factor: 2})
		firstDone <- err
	}()
	<-started

	second := make(chan FrameInfo)
	secondErr := make(chan error)
	go func() {
		info, err := c.Apply(context.Background(), Event{Kind: EventZoom, Factor: 2})
		second <- info
		secondErr <- err
	}()

	if err := <-firstDone; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first Apply = %v, want ErrSuperseded", err)
	}
	info := <-second
	if err := <-secondErr; err != nil {
		t.Fatalf("second Apply = %v", err)
	}
	if info.ZoomFactor != 4 {
		t.Errorf("ZoomFactor = %g, want 4", info.ZoomFactor)
	}
}

func TestResizeViewport(t *testing.T) {
	c := newCoordinator(t)

	info, err := c.ResizeViewport(context.Background(), 64, 48)
	if err != nil {
		t.Fatalf("ResizeViewport() = %v", err)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("viewport = %dx%d, want 64x48", info.Width, info.Height)
	}
	if img := c.Render(info.Draw); img.Rect.Dx() != 64 || img.Rect.Dy() != 48 {
		t.Errorf("image is %s, want 64x48", img.Rect)
	}

	if _, err := c.ResizeViewport(context.Background(), 0, 48); err == nil {
		t.Error("ResizeViewport(0, 48) returned no error")
	}
}

func TestRender(t *testing.T) {
	c := newCoordinator(t)
	tr := transform.NewTransform(40, 30)

	for _, draw := range []DrawSettings{
		{Scheme: mandelbrot.Green},
		{Scheme: mandelbrot.Redish, UseHistogram: true},
	} {
		img := c.Render(draw)
		x, y := tr.ComplexToPixel(complex(-0.2, 0.1))
		if got := img.RGBAAt(x, y); got.R != 0 || got.G != 0 || got.B != 0 {
			t.Errorf("%+v: in-set pixel is %v, want black", draw, got)
		}
		if draw.UseHistogram {
			continue
		}
		x, y = tr.ComplexToPixel(complex(-2.4, -1))
		if got, want := img.RGBAAt(x, y), mandelbrot.Color(draw.Scheme, 1, 50); got != want {
			t.Errorf("%+v: escaping pixel is %v, want %v", draw, got, want)
		}
	}
}

func TestRPC(t *testing.T) {
	c := newCoordinator(t)

	server := rpc.NewTcpServer(c, "127.0.0.1:0", "Viewer")
	if err := server.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	defer server.Stop()

	client := rpc.NewTcpClient(server.Addr(), "Client")
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect() = %v", err)
	}
	defer client.Disconnect()

	var nothing misc.Nothing
	var present bool
	if err := client.Call("Coordinator.RollCall", nothing, &present); err != nil || !present {
		t.Fatalf("RollCall = %t, %v", present, err)
	}

	var info FrameInfo
	if err := client.Call("Coordinator.Zoom", 2.0, &info); err != nil {
		t.Fatalf("Zoom = %v", err)
	}
	if info.ZoomFactor != 2 {
		t.Errorf("ZoomFactor = %g, want 2", info.ZoomFactor)
	}

	if err := client.Call("Coordinator.Center", Point{X: 10, Y: 10}, &info); err != nil {
		t.Fatalf("Center = %v", err)
	}
	if err := client.Call("Coordinator.SetScheme", "rainbow", &info); err != nil {
		t.Fatalf("SetScheme = %v", err)
	}
	if info.Draw.Scheme != mandelbrot.Rainbow {
		t.Errorf("Scheme = %s, want Rainbow", info.Draw.Scheme)
	}
	if err := client.Call("Coordinator.SetScheme", "plaid", &info); err == nil {
		t.Error("SetScheme(plaid) returned no error")
	}

	if err := client.Call("Coordinator.Info", Point{X: 20, Y: 15}, &info); err != nil {
		t.Fatalf("Info = %v", err)
	}
	if info.Point.X != 20 || info.Point.Y != 15 {
		t.Errorf("Point = %d, %d, want 20, 15", info.Point.X, info.Point.Y)
	}
	if err := client.Call("Coordinator.Info", Point{X: 400, Y: 15}, &info); err == nil {
		t.Error("Info outside the viewport returned no error")
	}

	var data FrameData
	if err := client.Call("Coordinator.Frame", nothing, &data); err != nil {
		t.Fatalf("Frame = %v", err)
	}
	if len(data.Iterations) != 40*30 || len(data.Equalized) != 40*30 {
		t.Errorf("Frame sent %d and %d values, want %d", len(data.Iterations), len(data.Equalized), 40*30)
	}

	var img ImageData
	if err := client.Call("Coordinator.Image", nothing, &img); err != nil {
		t.Fatalf("Image = %v", err)
	}
	if img.Width != 40 || img.Height != 30 || len(img.Pix) != 40*30*4 {
		t.Errorf("Image is %dx%d with %d bytes", img.Width, img.Height, len(img.Pix))
	}

	if err := client.Call("Coordinator.Reset", nothing, &info); err != nil {
		t.Fatalf("Reset = %v", err)
	}
	if info.ZoomFactor != 1 {
		t.Errorf("ZoomFactor after Reset = %g, want 1", info.ZoomFactor)
	}
}

func TestApplyIterationsLimit(t *testing.T) {
	c := newCoordinator(t)
	ctx := context.Background()

	// Far outside the set every pixel escapes
	if _, err := c.Apply(ctx, Event{Kind: EventCenter, X: 100000, Y: 100000}); err != nil {
		t.Fatalf("Apply(Center) = %v", err)
	}
	before := c.Summary()

	for _, factor := range []float64{1e30, math.MaxFloat64, float64(mandelbrot.MaxIterationsLimit)} {
		info, err := c.Apply(ctx, Event{Kind: EventChangeIterations, Factor: factor})
		if err == nil {
			t.Errorf("Apply(ChangeIterations %g) returned no error", factor)
		}
		if info.MaxIterations != before.MaxIterations {
			t.Errorf("ChangeIterations(%g): MaxIterations = %d, want %d", factor, info.MaxIterations, before.MaxIterations)
		}
	}

	info, err := c.Apply(ctx, Event{Kind: EventIdle})
	if err != nil {
		t.Fatalf("Apply(Idle) = %v", err)
	}
	if info.Stale || info.MaxIterations != 50 {
		t.Errorf("after rejected budgets: stale=%t max=%d, want fresh with 50", info.Stale, info.MaxIterations)
	}
}

func TestResizeViewportLimit(t *testing.T) {
	c := newCoordinator(t)

	for _, size := range []Viewport{{Width: 100000, Height: 100000}, {Width: ^uint(0), Height: 2}} {
		info, err := c.ResizeViewport(context.Background(), size.Width, size.Height)
		if err == nil {
			t.Errorf("ResizeViewport(%d, %d) returned no error", size.Width, size.Height)
		}
		if info.Width != 40 || info.Height != 30 {
			t.Errorf("viewport = %dx%d after a rejected resize, want 40x30", info.Width, info.Height)
		}
	}
}

func TestApplyZoomRejectsUnrepresentable(t *testing.T) {
	c := newCoordinator(t)
	ctx := context.Background()

	tests := []struct {
		factor float64
		steps  int
	}{
		{math.Inf(1), 1},
		{math.Inf(-1), 1},
		{math.NaN(), 1},
		// One step stays representable, the second overflows or underflows the scale
		{1e200, 2},
		{1e-200, 2},
	}
	for _, tt := range tests {
		factor := tt.factor
		for range tt.steps - 1 {
			if _, err := c.Apply(ctx, Event{Kind: EventZoom, Factor: factor}); err != nil {
				t.Fatalf("Apply(Zoom %g) = %v", factor, err)
			}
		}
		info, err := c.Apply(ctx, Event{Kind: EventZoom, Factor: factor})
		if err == nil {
			t.Errorf("Apply(Zoom %g) returned no error", factor)
		}
		if math.IsNaN(info.CenterRe) || math.IsInf(info.ZoomFactor, 0) || info.ZoomFactor <= 0 {
			t.Errorf("Zoom(%g) left center %g%+gi and zoom %g", factor, info.CenterRe, info.CenterIm, info.ZoomFactor)
		}
		if _, err := c.Apply(ctx, Event{Kind: EventReset}); err != nil {
			t.Fatalf("Apply(Reset) = %v", err)
		}
	}

	if _, err := c.Apply(ctx, Event{Kind: EventZoom, Factor: math.Inf(1)}); err == nil {
		t.Fatal("Apply(Zoom +Inf) returned no error")
	}
	info, err := c.Apply(ctx, Event{Kind: EventZoom, Factor: 0.5})
	if err != nil {
		t.Fatalf("Apply(Zoom 0.5) = %v", err)
	}
	if math.IsNaN(info.CenterRe) || math.IsNaN(info.CenterIm) || info.ZoomFactor != 0.5 {
		t.Errorf("after Zoom 0.5: center %g%+gi, zoom %g", info.CenterRe, info.CenterIm, info.ZoomFactor)
	}
}

func TestCloseTwice(t *testing.T) {
	c := newCoordinator(t)

	done := make(chan bool)
	for range 2 {
		go func() {
			c.Close()
			done <- true
		}()
	}
	<-done
	<-done
}

func TestPalettes(t *testing.T) {
	c := newCoordinator(t)

	var bars []ImageData
	if err := c.Palettes(Viewport{Width: 32, Height: 4}, &bars); err != nil {
		t.Fatalf("Palettes() = %v", err)
	}
	if len(bars) != len(mandelbrot.ColorSchemes) {
		t.Fatalf("Palettes() sent %d bars, want %d", len(bars), len(mandelbrot.ColorSchemes))
	}
	for i, scheme := range mandelbrot.ColorSchemes {
		want := mandelbrot.PaletteBar(scheme, 32, 4)
		if bars[i].Width != 32 || bars[i].Height != 4 || !cmp.Equal(bars[i].Pix, want.Pix) {
			t.Errorf("bar %d does not show %s", i, scheme)
		}
	}

	if err := c.Palettes(Viewport{}, &bars); err != nil {
		t.Fatalf("Palettes() with defaults = %v", err)
	}
	if bars[0].Width != 40 || bars[0].Height != 100 {
		t.Errorf("default bar is %dx%d, want 40x100", bars[0].Width, bars[0].Height)
	}

	if err := c.Palettes(Viewport{Width: 100000, Height: 100000}, &bars); err == nil {
		t.Error("Palettes() with an oversized bar returned no error")
	}
}

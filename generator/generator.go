// Package generator computes the escape times of a whole frame on a persistent
// pool of workers. Rows are split into one contiguous range per worker, each
// range is computed into a private slice, and the results are written back into
// the frame by the calling goroutine once every worker has reported.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"

	"MandelbrotExplorer/frame"
	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/transform"
)

type Generator struct {
	escape          func(c complex128, maxIterations uint) uint
	framesGenerated atomic.Uint64
	logger          bslogger.Logger
	pool            *workerpool.Pool
	tasksCompleted  atomic.Uint64
}

// NewGenerator starts a pool of workers that lives until Close. A worker count of
// zero or less uses GOMAXPROCS.
func NewGenerator(workers int, logger bslogger.Logger) *Generator {
	g := &Generator{
		escape: mandelbrot.EscapeTime,
		logger: logger,
		pool:   workerpool.New(workers),
	}
	g.logger.Debugf("Started generator with %d workers", g.pool.NumWorkers())
	return g
}

func (g *Generator) Workers() int {
	return g.pool.NumWorkers()
}

// Stats returns the number of frames generated and row ranges computed so far
func (g *Generator) Stats() (frames uint64, tasks uint64) {
	return g.framesGenerated.Load(), g.tasksCompleted.Load()
}

// Close retires the pool. Generate keeps working afterwards but runs serially.
func (g *Generator) Close() {
	g.pool.Close()
}

// Generate fills the raw escape times of f for the view t. It blocks until every
// row range has been computed. If any range fails, or ctx is cancelled, f is left
// untouched and the error names the failed ranges.
//
// Generate calls on the same frame must not overlap.
func (g *Generator) Generate(ctx context.Context, t transform.Transform, maxIterations uint, f *frame.Frame) error {
	if f.Width != t.Width || f.Height != t.Height {
		return fmt.Errorf("frame is %dx%d but the view is %dx%d", f.Width, f.Height, t.Width, t.Height)
	}
	if maxIterations != f.MaxIterations {
		return fmt.Errorf("iteration budget %d does not match the frame budget %d", maxIterations, f.MaxIterations)
	}

	startTime := time.Now()
	s := snapshot{
		maxIterations: maxIterations,
		transform:     t,
		width:         f.Width,
	}

	ranges := Partition(f.Height, uint(g.pool.NumWorkers()))
	tasksTodo := make([]Task, len(ranges))
	for i, rows := range ranges {
		tasksTodo[i] = Task{ID: uint(i), Rows: rows}
	}

	// Scatter the tasks and wait on the pool's barrier
	tasksDone := make(chan Task, len(tasksTodo))
	g.pool.ParallelFor(len(tasksTodo), func(start, end int) {
		for i := start; i < end; i++ {
			task := tasksTodo[i]
			g.process(ctx, &task, s)
			tasksDone <- task
		}
	})
	close(tasksDone)

	// Gather
	received := make(map[uint]Task, len(tasksTodo))
	for task := range tasksDone {
		received[task.ID] = task
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("generation abandoned: %w", err)
	}

	var errs []error
	for _, todo := range tasksTodo {
		done, ok := received[todo.ID]
		if !ok {
			errs = append(errs, &GenerationError{Rows: todo.Rows, Err: errNoResult})
			continue
		}
		err := done.Err
		if err == nil {
			err = done.validate(s.width, s.maxIterations)
		}
		if err != nil {
			errs = append(errs, &GenerationError{Rows: done.Rows, Err: err})
		}
	}
	if len(errs) > 0 {
		for _, err := range errs {
			g.logger.Errorf("Generation failed: %s", err)
		}
		return errors.Join(errs...)
	}

	// Every range is valid, write them back in row order
	for _, todo := range tasksTodo {
		done := received[todo.ID]
		if err := f.SetRows(done.Rows.Start, done.Results); err != nil {
			return &GenerationError{Rows: done.Rows, Err: err}
		}
		g.tasksCompleted.Add(1)
	}
	g.framesGenerated.Add(1)

	g.logger.Debugf("Generated frame with %d workers and max iterations %d in %s", len(tasksTodo), maxIterations, time.Since(startTime))
	return nil
}

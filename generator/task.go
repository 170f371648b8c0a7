package generator

import (
	"errors"
	"fmt"
)

// RowRange is the half-open range of image rows [Start, End)
type RowRange struct {
	Start uint
	End   uint
}

func (r RowRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

func (r RowRange) Len() uint {
	return r.End - r.Start
}

// Partition splits height rows into contiguous ranges, one per worker. Every
// range holds height/workers rows and the last one also takes the remainder.
// The number of workers is clamped to height so that no range is empty.
func Partition(height uint, workers uint) []RowRange {
	if height == 0 {
		return nil
	}
	if workers == 0 {
		workers = 1
	}
	if workers > height {
		workers = height
	}

	rowsPerWorker := height / workers
	ranges := make([]RowRange, workers)
	for w := uint(0); w < workers; w++ {
		ranges[w] = RowRange{Start: w * rowsPerWorker, End: (w + 1) * rowsPerWorker}
	}
	ranges[workers-1].End = height
	return ranges
}

// Task is the unit of work handed to one pool worker: a range of rows to compute
// into a private result slice.
type Task struct {
	ID      uint
	Err     error
	Results []uint
	Rows    RowRange
}

func (t *Task) String() string {
	output := "{Task "
	output += fmt.Sprintf("ID: %d ", t.ID)
	output += fmt.Sprintf("Rows: %s ", t.Rows)
	output += fmt.Sprintf("Result Count: %d}", len(t.Results))
	return output
}

// validate checks that a finished task carries a full row range of bounded values
func (t *Task) validate(width uint, maxIterations uint) error {
	if want := t.Rows.Len() * width; uint(len(t.Results)) != want {
		return fmt.Errorf("got %d results, want %d", len(t.Results), want)
	}
	for i, v := range t.Results {
		if v > maxIterations {
			return fmt.Errorf("result %d is %d, above the budget of %d", i, v, maxIterations)
		}
	}
	return nil
}

var errNoResult = errors.New("worker delivered no result")

// GenerationError reports a row range whose result could not be computed
type GenerationError struct {
	Err  error
	Rows RowRange
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating rows %s: %s", e.Rows, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

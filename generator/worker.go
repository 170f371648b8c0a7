package generator

import (
	"context"
	"fmt"

	"MandelbrotExplorer/transform"
)

// snapshot is the read-only input shared by value with every task of one generation
type snapshot struct {
	maxIterations uint
	transform     transform.Transform
	width         uint
}

// cancelCheckInterval is the number of pixels computed between context checks
const cancelCheckInterval = 256

// process computes the escape time of every pixel in the task's rows. A panic in
// the evaluator or a cancelled context is recorded in task.Err instead of a result.
func (g *Generator) process(ctx context.Context, task *Task, s snapshot) {
	defer func() {
		if r := recover(); r != nil {
			task.Results = nil
			task.Err = fmt.Errorf("worker panicked: %v", r)
		}
	}()

	results := make([]uint, 0, task.Rows.Len()*s.width)
	for row := task.Rows.Start; row < task.Rows.End; row++ {
		for column := uint(0); column < s.width; column++ {
			if column%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					task.Err = err
					return
				}
			}
			c := s.transform.PixelToComplex(int(column), int(row))
			results = append(results, g.escape(c, s.maxIterations))
		}
	}
	task.Results = results
}

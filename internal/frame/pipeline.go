package frame

import (
	"context"
	"time"
)

// Stage is one step of a Pipeline. Run is applied, then the pipeline waits
// Hold before starting the next stage.
type Stage struct {
	Name string
	Run  func()
	Hold time.Duration
}

// Pipeline runs stages strictly one after another on a Scheduler. Stages are
// skipped once the context is done; a skipped pipeline never calls Done.
type Pipeline struct {
	Stages []Stage
	// Done, if set, runs after the last stage's hold has elapsed.
	Done func()
}

// Start runs the first stage synchronously and returns a function that
// cancels everything not yet run. The cancel function is safe to call more
// than once.
func (p Pipeline) Start(ctx context.Context, s Scheduler) (cancel func()) {
	ctx, cancelCtx := context.WithCancel(ctx)
	var stop func() bool

	var step func(i int)
	step = func(i int) {
		if ctx.Err() != nil {
			return // cancelled between scheduling and running
		}
		if i == len(p.Stages) {
			if p.Done != nil {
				p.Done()
			}
			return
		}
		st := p.Stages[i]
		if st.Run != nil {
			st.Run()
		}
		if ctx.Err() != nil {
			return // the stage itself tore the pipeline down
		}
		stop = s.AfterFunc(st.Hold, func() { step(i + 1) })
	}
	step(0)

	return func() {
		cancelCtx()
		if stop != nil {
			stop()
		}
	}
}

package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ohrlando/stream-list/logger"
)

// runResult is what a terminal observes after one evaluation.
type runResult[T any] struct {
	triggered   bool
	replacement T
	replaced    bool
	scanned     int
	emitted     int
}

// bound returns the stages for one evaluation: recorded stages with fresh
// per-run state, followed by the call-local extra stages.
func (p *Pipeline[T]) bound(extra []Stage[T]) []Stage[T] {
	stages := make([]Stage[T], 0, len(p.stages)+len(extra))
	for _, s := range p.stages {
		stages = append(stages, s.bind())
	}
	return append(stages, extra...)
}

// evaluate walks the source once and yields every surviving element with its
// source index. A first-match trigger yields the replacement and stops; an
// any-match trigger stops without yielding. yield returning false stops the
// walk as well.
func (p *Pipeline[T]) evaluate(extra []Stage[T], yield func(int, T) bool, res *runResult[T]) {
	stages := p.bound(extra)
	for i, v := range p.src.seq() {
		res.scanned++
		var sig signal[T]
		out, keep := v, true
		for j := range stages {
			out, keep = apply(&stages[j], out, i, &sig)
			if !keep || sig.triggered {
				break
			}
		}
		if sig.triggered {
			res.triggered = true
			if sig.replaced {
				res.replacement, res.replaced = sig.replacement, true
				res.emitted++
				yield(i, sig.replacement)
			}
			return
		}
		if !keep {
			continue
		}
		res.emitted++
		if !yield(i, out) {
			return
		}
	}
}

// run is evaluate wrapped with observer notifications. A panic raised by a
// stage callable or by yield is reported to the observers and re-raised.
func (p *Pipeline[T]) run(terminal string, extra []Stage[T], yield func(int, T) bool) runResult[T] {
	var res runResult[T]
	if len(p.opts.observers) == 0 {
		p.evaluate(extra, yield, &res)
		return res
	}

	ev := Evaluation{
		ID:       uuid.NewString(),
		Terminal: terminal,
		Stages:   len(p.stages) + len(extra),
		Source:   p.src.size(),
	}
	ctx := logger.ContextWithEvaluationID(p.opts.context(), ev.ID)
	done := make([]func(Report), len(p.opts.observers))
	for i, obs := range p.opts.observers {
		done[i] = obs.Observe(ctx, ev)
	}

	start := time.Now()
	completed := false
	defer func() {
		rep := Report{
			Scanned:        res.scanned,
			Emitted:        res.emitted,
			ShortCircuited: res.triggered,
			Duration:       time.Since(start),
		}
		var r any
		if !completed {
			// r is nil when the goroutine is exiting through runtime.Goexit.
			if r = recover(); r != nil {
				rep.Err = fmt.Errorf("pipeline: %s evaluation panicked: %v", terminal, r)
			}
		}
		for _, fn := range done {
			if fn != nil {
				fn(rep)
			}
		}
		if r != nil {
			panic(r)
		}
	}()

	p.evaluate(extra, yield, &res)
	completed = true
	return res
}

func keepAll[T any](int, T) bool { return true }

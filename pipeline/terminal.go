package pipeline

import "iter"

// Terminal names reported to observers.
const (
	TerminalToSlice    = "to_slice"
	TerminalAll        = "all"
	TerminalFirst      = "first"
	TerminalFirstMatch = "first_match"
	TerminalLast       = "last"
	TerminalAny        = "any"
	TerminalCount      = "count"
	TerminalEach       = "each"
)

// ToSlice evaluates the pipeline and returns every surviving element in
// source order. The result is never nil.
func (p *Pipeline[T]) ToSlice() []T {
	if src, ok := p.src.(*sliceSource[T]); ok && len(p.stages) == 0 && len(p.opts.observers) == 0 {
		return append(make([]T, 0, len(src.items)), src.items...)
	}
	out := []T{}
	p.run(TerminalToSlice, nil, func(_ int, v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// All returns a lazy, single-use view of the evaluation: it yields the source
// index and the surviving element. Each range over the returned sequence runs
// a new evaluation with fresh stage state.
func (p *Pipeline[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		p.run(TerminalAll, nil, yield)
	}
}

// Values is All without the source index.
func (p *Pipeline[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		p.run(TerminalAll, nil, func(_ int, v T) bool {
			return yield(v)
		})
	}
}

// First returns the first surviving element. Scanning stops as soon as it is
// found. The boolean is false when nothing survives.
func (p *Pipeline[T]) First() (T, bool) {
	if src, ok := p.src.(*sliceSource[T]); ok && len(p.stages) == 0 && len(p.opts.observers) == 0 {
		if len(src.items) == 0 {
			var zero T
			return zero, false
		}
		return src.items[0], true
	}
	var (
		first T
		found bool
	)
	p.run(TerminalFirst, nil, func(_ int, v T) bool {
		first, found = v, true
		return false
	})
	return first, found
}

// FirstMatch returns the first surviving element satisfying pred and stops
// scanning there. A nil pred behaves like First. The boolean is false when no
// element matches, so a matching zero value is still reported as found.
func (p *Pipeline[T]) FirstMatch(pred func(T) bool) (T, bool) {
	if pred == nil {
		return p.First()
	}
	res := p.run(TerminalFirstMatch, []Stage[T]{firstMatchStage(pred)}, keepAll[T])
	return res.replacement, res.replaced
}

// FirstOr is FirstMatch returning def when no element matches.
func (p *Pipeline[T]) FirstOr(pred func(T) bool, def T) T {
	if v, ok := p.FirstMatch(pred); ok {
		return v
	}
	return def
}

// Last evaluates the whole pipeline and returns the final surviving element.
func (p *Pipeline[T]) Last() (T, bool) {
	var (
		last  T
		found bool
	)
	p.run(TerminalLast, nil, func(_ int, v T) bool {
		last, found = v, true
		return true
	})
	return last, found
}

// Any reports whether a surviving element satisfies pred. pred is not called
// again after the first match. A nil pred reports whether anything survives.
func (p *Pipeline[T]) Any(pred func(T) bool) bool {
	if pred == nil {
		_, ok := p.First()
		return ok
	}
	return p.run(TerminalAny, []Stage[T]{anyMatchStage(pred)}, keepAll[T]).triggered
}

// Count evaluates the pipeline and returns the number of surviving elements.
func (p *Pipeline[T]) Count() int {
	n := 0
	p.run(TerminalCount, nil, func(int, T) bool {
		n++
		return true
	})
	return n
}

// Each eagerly calls fn for every element that survives the recorded stages,
// in source order, without stopping early. The receiver is not modified.
func (p *Pipeline[T]) Each(fn func(T, int)) {
	p.run(TerminalEach, []Stage[T]{eachStage(fn)}, keepAll[T])
}

package pipeline

import "iter"

// Project maps every surviving element of p to a new type. The result is a
// root pipeline whose source is a frozen branch of p: later mutation of p does
// not reach it, and its own mutating operations return READ_ONLY_SOURCE.
// The index seen by downstream stages is still the original source index.
func Project[T, U any](p *Pipeline[T], fn func(T, int) U) *Pipeline[U] {
	return &Pipeline[U]{
		src:  &projectedSource[T, U]{upstream: p.branch(), fn: fn},
		opts: p.opts,
	}
}

type projectedSource[T, U any] struct {
	upstream *Pipeline[T]
	fn       func(T, int) U
}

func (s *projectedSource[T, U]) seq() iter.Seq2[int, U] {
	return func(yield func(int, U) bool) {
		var res runResult[T]
		s.upstream.evaluate(nil, func(i int, v T) bool {
			return yield(i, s.fn(v, i))
		}, &res)
	}
}

// clone returns the receiver: the upstream branch is never mutated.
func (s *projectedSource[T, U]) clone() source[U] { return s }

func (s *projectedSource[T, U]) size() int { return -1 }

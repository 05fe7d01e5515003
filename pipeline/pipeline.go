package pipeline

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/ohrlando/stream-list/errors"
)

// Pipeline is a deferred, single-pass sequence pipeline over elements of type T.
// Builders return new pipelines; no work happens until a terminal is called.
type Pipeline[T any] struct {
	src    source[T]
	stages []Stage[T]
	opts   options
}

// Option configures a root pipeline. Options propagate to every branch.
type Option func(*options)

type options struct {
	ctx       context.Context
	observers []Observer
}

func (o options) context() context.Context {
	if o.ctx == nil {
		return context.Background()
	}
	return o.ctx
}

// WithObserver registers an Observer notified around every terminal evaluation.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// New creates a root pipeline over a copy of items.
func New[T any](items []T, opts ...Option) *Pipeline[T] {
	p := &Pipeline[T]{src: &sliceSource[T]{items: slices.Clone(items)}}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// FromSeq creates a root pipeline from a finite sequence. The sequence is
// drained once, immediately.
func FromSeq[T any](seq iter.Seq[T], opts ...Option) *Pipeline[T] {
	p := &Pipeline[T]{src: &sliceSource[T]{items: slices.Collect(seq)}}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// branch forks the pipeline: the child owns a copy of the source and a new
// stage list holding the parent's stages followed by extra.
func (p *Pipeline[T]) branch(extra ...Stage[T]) *Pipeline[T] {
	stages := make([]Stage[T], len(p.stages), len(p.stages)+len(extra))
	copy(stages, p.stages)
	stages = append(stages, extra...)
	return &Pipeline[T]{src: p.src.clone(), stages: stages, opts: p.opts}
}

// --- Builders ---

// Where keeps the elements for which fn returns true. The index is the
// position of the element in the source.
func (p *Pipeline[T]) Where(fn func(T, int) bool) *Pipeline[T] {
	return p.branch(whereStage(fn))
}

// Select replaces each element with the result of fn.
// Use Project to change the element type.
func (p *Pipeline[T]) Select(fn func(T, int) T) *Pipeline[T] {
	return p.branch(selectStage(fn))
}

// WithContext returns a branch whose observers receive ctx. No stage is added.
func (p *Pipeline[T]) WithContext(ctx context.Context) *Pipeline[T] {
	child := p.branch()
	child.opts.ctx = ctx
	return child
}

// Stages returns a copy of the recorded stages in application order.
func (p *Pipeline[T]) Stages() []Stage[T] {
	return slices.Clone(p.stages)
}

// Len returns the number of source elements, before any stage runs.
// For projected pipelines this evaluates the upstream pipeline.
func (p *Pipeline[T]) Len() int {
	if n := p.src.size(); n >= 0 {
		return n
	}
	n := 0
	for range p.src.seq() {
		n++
	}
	return n
}

// String returns the source elements joined by commas.
func (p *Pipeline[T]) String() string {
	var b strings.Builder
	first := true
	for _, v := range p.src.seq() {
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprint(&b, v)
	}
	return b.String()
}

// --- Mutating operations ---
//
// These act on the receiver's own source only. They are not chain-safe:
// branches taken earlier keep the source they copied.

// Append adds items to the end of the source.
func (p *Pipeline[T]) Append(items ...T) error {
	src, err := p.owned()
	if err != nil {
		return err
	}
	src.items = append(src.items, items...)
	return nil
}

// Extend appends every element of items to the source.
func (p *Pipeline[T]) Extend(items []T) error {
	return p.Append(items...)
}

// ExtendFrom evaluates other and appends its result to the source.
func (p *Pipeline[T]) ExtendFrom(other *Pipeline[T]) error {
	if _, err := p.owned(); err != nil {
		return err
	}
	return p.Append(other.ToSlice()...)
}

// RemoveAt removes the source element at index. An index outside
// [0, Len()) returns an OUT_OF_RANGE error and leaves the source unchanged.
func (p *Pipeline[T]) RemoveAt(index int) error {
	src, err := p.owned()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(src.items) {
		return errors.OutOfRange(index, len(src.items))
	}
	src.items = slices.Delete(src.items, index, index+1)
	return nil
}

// Slice returns a copy of the source elements from start up to, but not
// including, end. Negative offsets count from the end of the source and
// out-of-range offsets are clamped, so Slice(-2, p.Len()) returns the last
// two elements. The source is not modified.
func (p *Pipeline[T]) Slice(start, end int) ([]T, error) {
	src, err := p.owned()
	if err != nil {
		return nil, err
	}
	n := len(src.items)
	start, end = clampOffset(start, n), clampOffset(end, n)
	if start >= end {
		return []T{}, nil
	}
	return slices.Clone(src.items[start:end]), nil
}

func clampOffset(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
		return i
	}
	if i > n {
		return n
	}
	return i
}

func (p *Pipeline[T]) owned() (*sliceSource[T], error) {
	src, ok := p.src.(*sliceSource[T])
	if !ok {
		return nil, errors.ReadOnlySource()
	}
	return src, nil
}

// --- Sources ---

// source is the ordered input of a pipeline. It yields (source index, element).
type source[T any] interface {
	seq() iter.Seq2[int, T]
	clone() source[T]
	// size returns the element count, or -1 when it is only known by evaluating.
	size() int
}

type sliceSource[T any] struct {
	items []T
}

func (s *sliceSource[T]) seq() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (s *sliceSource[T]) clone() source[T] {
	return &sliceSource[T]{items: slices.Clone(s.items)}
}

func (s *sliceSource[T]) size() int { return len(s.items) }

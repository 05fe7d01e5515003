package pipeline

// Kind identifies how a Stage treats the element flowing through it.
type Kind uint8

const (
	// KindReserved is an identity pass-through kept for future skip-style stages.
	KindReserved Kind = iota
	// KindAnyMatch flags the evaluation as triggered when its predicate holds.
	KindAnyMatch
	// KindEach runs a side-effect and keeps the element.
	KindEach
	// KindFirstMatch flags the evaluation and records the matching element.
	KindFirstMatch
	// KindSelect replaces the element with a transform result.
	KindSelect
	// KindWhere drops the element unless its predicate holds.
	KindWhere
)

// String returns the short name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAnyMatch:
		return "any"
	case KindEach:
		return "each"
	case KindFirstMatch:
		return "first"
	case KindSelect:
		return "select"
	case KindWhere:
		return "where"
	default:
		return "reserved"
	}
}

// Stage is one recorded operation of a pipeline. Stages are immutable once
// built; branches share them read-only.
type Stage[T any] struct {
	kind   Kind
	where  func(T, int) bool
	sel    func(T, int) T
	each   func(T, int)
	match  func(T) bool
	newRun func() func(T, int) bool
}

// Kind returns the stage kind.
func (s Stage[T]) Kind() Kind { return s.kind }

// Stateful reports whether the stage rebuilds its predicate for every evaluation.
func (s Stage[T]) Stateful() bool { return s.newRun != nil }

// Func returns the callable recorded for the stage. For stateful where stages
// it is the factory that produces a fresh predicate per evaluation.
func (s Stage[T]) Func() any {
	switch s.kind {
	case KindWhere:
		if s.newRun != nil {
			return s.newRun
		}
		return s.where
	case KindSelect:
		return s.sel
	case KindEach:
		return s.each
	case KindAnyMatch, KindFirstMatch:
		return s.match
	default:
		return nil
	}
}

func whereStage[T any](fn func(T, int) bool) Stage[T] {
	return Stage[T]{kind: KindWhere, where: fn}
}

// statefulWhereStage records a where stage whose predicate carries per-run
// state. newRun is called once at the start of every evaluation.
func statefulWhereStage[T any](newRun func() func(T, int) bool) Stage[T] {
	return Stage[T]{kind: KindWhere, newRun: newRun}
}

func selectStage[T any](fn func(T, int) T) Stage[T] {
	return Stage[T]{kind: KindSelect, sel: fn}
}

func eachStage[T any](fn func(T, int)) Stage[T] {
	return Stage[T]{kind: KindEach, each: fn}
}

func anyMatchStage[T any](fn func(T) bool) Stage[T] {
	return Stage[T]{kind: KindAnyMatch, match: fn}
}

func firstMatchStage[T any](fn func(T) bool) Stage[T] {
	return Stage[T]{kind: KindFirstMatch, match: fn}
}

// bind resolves per-run state. Stateless stages are returned unchanged.
func (s Stage[T]) bind() Stage[T] {
	if s.newRun == nil {
		return s
	}
	return Stage[T]{kind: s.kind, where: s.newRun()}
}

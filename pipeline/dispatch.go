package pipeline

// signal lets a short-circuiting stage stop the evaluation. It is reset for
// every source element.
type signal[T any] struct {
	triggered   bool
	replacement T
	replaced    bool
}

// apply runs one stage against one element. keep is false when the element
// must be dropped at this point of the chain.
func apply[T any](s *Stage[T], v T, index int, sig *signal[T]) (out T, keep bool) {
	switch s.kind {
	case KindWhere:
		return v, s.where(v, index)
	case KindSelect:
		return s.sel(v, index), true
	case KindEach:
		s.each(v, index)
		return v, true
	case KindAnyMatch:
		if s.match(v) {
			sig.triggered = true
		}
		return v, true
	case KindFirstMatch:
		if s.match(v) {
			sig.triggered = true
			sig.replacement = v
			sig.replaced = true
		}
		return v, true
	case KindReserved:
		return v, true
	default:
		return v, true
	}
}

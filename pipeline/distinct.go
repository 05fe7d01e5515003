package pipeline

// Distinct keeps the first occurrence of every element value, preserving
// source order. Seen values are tracked per evaluation, so evaluating the same
// pipeline twice yields the same result.
//
// Interface element types must hold hashable dynamic values; use DistinctBy
// otherwise.
func Distinct[T comparable](p *Pipeline[T]) *Pipeline[T] {
	return DistinctBy(p, func(v T) T { return v })
}

// DistinctBy keeps the first element for every key returned by key.
func DistinctBy[T any, K comparable](p *Pipeline[T], key func(T) K) *Pipeline[T] {
	return p.branch(statefulWhereStage(func() func(T, int) bool {
		seen := make(map[K]struct{})
		return func(v T, _ int) bool {
			k := key(v)
			if _, dup := seen[k]; dup {
				return false
			}
			seen[k] = struct{}{}
			return true
		}
	}))
}

// Package pipeline provides a deferred, single-pass sequence pipeline.
//
// A Pipeline wraps an ordered source and records stages. Builders (Where,
// Select, Distinct, DistinctBy, Project) return new pipelines and never run
// anything. Terminals (ToSlice, All, First, FirstMatch, Last, Any, Count,
// Each) run the evaluation loop, which pushes every source element through the
// whole stage chain once instead of materializing a slice per stage.
//
// Branching is safe: a builder copies the source and stage list, so siblings
// forked from the same parent never observe each other's stages, and the
// parent keeps its own chain.
//
// # Stages
//
//   - where: keep the element when the predicate holds
//   - select: replace the element with the transform result
//   - each: side-effect, element unchanged
//   - any-match: signal the loop to stop once the predicate holds (Any)
//   - first-match: signal the loop to stop and emit the match (FirstMatch)
//   - reserved: identity pass-through
//
// # Usage
//
//	nums := pipeline.New([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
//	halves := nums.
//	    Where(func(n, _ int) bool { return n%2 == 0 }).
//	    Select(func(n, _ int) int { return n * n }).
//	    Select(func(n, _ int) int { return n / 2 })
//	halves.ToSlice() // [0 2 8 18 32], nums was iterated once
//
// Safe branches:
//
//	evens := nums.Where(func(n, _ int) bool { return n%2 == 0 })
//	big := evens.Where(func(n, _ int) bool { return n >= 5 }).ToSlice()
//	small := evens.Where(func(n, _ int) bool { return n < 5 }).ToSlice()
//
// With observers:
//
//	p := pipeline.New(items,
//	    pipeline.WithTracing("orders"),
//	    pipeline.WithLogging(logger.WithComponent("orders")),
//	)
package pipeline

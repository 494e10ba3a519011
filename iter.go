package ecs

import (
	"iter"

	iter_util "github.com/TheBitDrifter/util/iter"
)

// mapKeys and mapValues adapt a plain map to the stdlib iter.Seq shape
// iter_util.Collect expects, so this package's various id->value maps can
// be collected into slices with one call instead of a hand-rolled loop.
func mapKeys[K comparable, V any](m map[K]V) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m {
			if !yield(k) {
				return
			}
		}
	}
}

func mapValues[K comparable, V any](m map[K]V) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m {
			if !yield(v) {
				return
			}
		}
	}
}

// collectKeys and collectValues are thin Collect wrappers kept next to the
// iterators above so call sites read as one step instead of two.
func collectKeys[K comparable, V any](m map[K]V) []K {
	return iter_util.Collect(mapKeys(m))
}

func collectValues[K comparable, V any](m map[K]V) []V {
	return iter_util.Collect(mapValues(m))
}

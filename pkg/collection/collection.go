// Package collection provides generic slice helpers.
//
//	ids := collection.Map(products, func(p models.Product) uint { return p.ID })
//	byProduct := collection.GroupBy(rows,
//	    func(b models.Barcode) uint { return b.ProductID },
//	    func(b models.Barcode) string { return b.Barcode })
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	var out []T
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Unique returns s with repeated elements removed, first occurrence wins.
func Unique[T comparable](s []T) []T {
	return UniqueBy(s, func(v T) T { return v })
}

// UniqueBy removes elements whose key, extracted by fn, was already seen.
func UniqueBy[T any, K comparable](s []T, fn func(T) K) []T {
	seen := make(map[K]struct{}, len(s))
	var out []T
	for _, v := range s {
		k := fn(v)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// GroupBy partitions s by key, mapping each element through val. Order
// within a group follows s.
func GroupBy[T any, K comparable, V any](s []T, key func(T) K, val func(T) V) map[K][]V {
	out := make(map[K][]V)
	for _, v := range s {
		k := key(v)
		out[k] = append(out[k], val(v))
	}
	return out
}

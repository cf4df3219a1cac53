// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

/*
Package slice complements the standard [slices] package with small generic
helpers used by the in-memory stores and the validation layer.
*/
package slice

// Map returns transform applied to every element. A nil input stays nil.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Filter keeps the elements for which keep returns true, in order.
func Filter[T any](input []T, keep func(T) bool) []T {
	var result []T
	for _, v := range input {
		if keep(v) {
			result = append(result, v)
		}
	}
	return result
}

// CountBy tallies the elements per key.
func CountBy[T any, K comparable](input []T, key func(T) K) map[K]int {
	counts := make(map[K]int)
	for _, v := range input {
		counts[key(v)]++
	}
	return counts
}

// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

// Package pointer holds the generic helpers behind partial profile updates,
// where a nil field means "leave unchanged".
package pointer

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Assign writes *src into *dst when src is non-nil and reports whether it did.
//
//	pointer.Assign(&user.Region, update.Region)
func Assign[T any](dst *T, src *T) bool {
	if src == nil {
		return false
	}
	*dst = *src
	return true
}

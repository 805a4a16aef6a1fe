// Package utils holds small generic helpers shared across the module.
package utils

// Value dereferences v, returning the zero value for a nil pointer. Used for
// optional response fields such as a rotated refresh token.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Ptr returns a pointer to v, mainly for literals in tests.
func Ptr[T any](v T) *T {
	return &v
}

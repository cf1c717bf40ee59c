package catalog

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// OptString returns nil for the empty string.
func OptString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to value or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// EqualPtr compares two optional values. Two nils are equal.
func EqualPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

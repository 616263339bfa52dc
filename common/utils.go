package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// ValueOr returns p when it is set, or a pointer to fallback when p is nil. Use it for optional
// settings whose zero value is meaningful and must survive defaulting.
//
// Parameters:
//   - p: the configured value, or nil when unset
//   - fallback: the default
//
// Returns:
//   - *T: p, or a new pointer holding fallback
func ValueOr[T any](p *T, fallback T) *T {
	if p != nil {
		return p
	}
	return &fallback
}

// Package ptr holds small pointer-construction helpers used across DTOs that
// carry optional fields, mirroring the teacher's pkg/mpointers package.
package ptr

// Bool returns a pointer to the given bool.
func Bool(b bool) *bool {
	return &b
}

// String returns a pointer to the given string.
func String(s string) *string {
	return &s
}

// Int returns a pointer to the given int.
func Int(i int) *int {
	return &i
}

// StringOrEmpty dereferences s, returning "" for a nil pointer.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// IsNilOrEmpty reports whether s is nil or points to an empty string.
func IsNilOrEmpty(s *string) bool {
	return s == nil || *s == ""
}

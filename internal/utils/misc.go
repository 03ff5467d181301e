package utils

import "strings"

// Ptr is how partial updates (profile and listing PATCH bodies) mark a
// field as present.
func Ptr[T any](v T) *T { return &v }

// Val reads an optional filter or PATCH field, yielding the zero value
// when the caller left it out.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NormalizeEmail is applied on sign-up, login and password reset so one
// identity matches however the guest or host typed their address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package access holds the pure permission and role predicates used to gate
// console views. The predicates are stateless: they evaluate a requirement
// set against the grants carried by the current session's user.
//
// Convention: an empty requirement set always passes, for both the all-of and
// any-of forms. A guard with nothing configured must not lock anyone out.
// All predicates return false for a nil user - never panic.
package access

import (
	"github.com/veridocs/go-kyc-console/users"
)

// HasAllPermissions reports whether the user holds every permission in
// required. Vacuously true when required is empty.
func HasAllPermissions(u *users.User, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	for _, p := range required {
		if !u.HasPermission(p) {
			return false
		}
	}
	return true
}

// HasAnyPermission reports whether the user holds at least one permission in
// required. True when required is empty.
func HasAnyPermission(u *users.User, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	for _, p := range required {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the user holds every role in required.
// Vacuously true when required is empty.
func HasAllRoles(u *users.User, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	for _, r := range required {
		if !u.HasRole(r) {
			return false
		}
	}
	return true
}

// HasAnyRole reports whether the user holds at least one role in required.
// True when required is empty.
func HasAnyRole(u *users.User, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	for _, r := range required {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

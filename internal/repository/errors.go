// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios, e.g.
// ErrConflict signals that an operation cannot proceed because of
// existing state (following a creator twice, issuing a second invite
// for the same email).
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a create or update cannot be
// performed because of conflicting state, such as issuing a second
// creator invite for the same email or following a user twice.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062), optionally on the named unique key. The driver does not
// expose a structured code here, so the message is inspected the same
// way the rest of the repositories do.
func isDuplicate(err error, key string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return false
	}
	return key == "" || strings.Contains(msg, strings.ToLower(key))
}

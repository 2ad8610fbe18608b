// Package repository defines error values shared across repositories.
// Sentinels let handlers map storage failures onto HTTP status codes
// without inspecting driver errors: ErrConflict becomes 409 and the
// per-entity not-found errors become 404.
package repository

import "errors"

// ErrConflict is returned when an operation cannot proceed because of
// existing state. More specific sentinels such as ErrEmailExists wrap
// it, so handlers can match either the broad class or the exact cause.
var ErrConflict = errors.New("conflict")

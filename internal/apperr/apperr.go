// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the typed error taxonomy surfaced by the API.
// Every failure the core produces is one of these kinds; the HTTP layer
// renders the carried status code and message without inspecting causes.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a typed application error carrying the HTTP status class it
// maps to at the boundary.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NotFound reports that a resource could not be resolved by id or slug.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Validation reports missing or malformed input, including duplicate
// unique fields.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Forbidden reports a denied authorization decision.
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// Conflict reports a state-dependent refusal, such as deleting a category
// that still has posts.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// From extracts a typed Error from err. Untyped errors map to a generic
// 500 so internal details never leak to callers.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
}

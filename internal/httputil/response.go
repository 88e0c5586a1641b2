// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package httputil provides the JSON response envelope used by every API
// handler. Success bodies carry {"success":true,...}, errors carry
// {"success":false,"message":...}, and paginated listings add count,
// total, page and pages alongside the data.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"inkwell/internal/apperr"
)

// envelope is the standard success response shape.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// listEnvelope is the paginated listing response shape.
type listEnvelope struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	Data    any  `json:"data"`
}

// countEnvelope is the unpaginated listing response shape (category
// lists, search results, an author's own posts).
type countEnvelope struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

// errorEnvelope is the failure response shape.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RespondJSON writes a raw JSON response with the given status code.
// It marshals first so an encoding failure never produces a partial body.
func RespondJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		slog.Error("response encode failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondData wraps data in the success envelope.
func RespondData(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, envelope{Success: true, Data: data})
}

// RespondList wraps a page of results in the listing envelope.
func RespondList(w http.ResponseWriter, data any, count, total, page, pages int) {
	RespondJSON(w, http.StatusOK, listEnvelope{
		Success: true,
		Count:   count,
		Total:   total,
		Page:    page,
		Pages:   pages,
		Data:    data,
	})
}

// RespondCount wraps an unpaginated result set in the count envelope.
func RespondCount(w http.ResponseWriter, data any, count int) {
	RespondJSON(w, http.StatusOK, countEnvelope{Success: true, Count: count, Data: data})
}

// MarshalCount builds the count envelope body without writing it.
func MarshalCount(data any, count int) ([]byte, error) {
	return json.Marshal(countEnvelope{Success: true, Count: count, Data: data})
}

// MarshalList builds the listing envelope body without writing it, for
// responses that are cached before being sent.
func MarshalList(data any, count, total, page, pages int) ([]byte, error) {
	return json.Marshal(listEnvelope{
		Success: true,
		Count:   count,
		Total:   total,
		Page:    page,
		Pages:   pages,
		Data:    data,
	})
}

// MarshalData builds the success envelope body without writing it.
func MarshalData(data any) ([]byte, error) {
	return json.Marshal(envelope{Success: true, Data: data})
}

// RespondCached writes an already-marshaled envelope body.
func RespondCached(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// RespondMessage writes a success envelope that carries only a message,
// for operations with nothing else to return (logout, deletes).
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: true, Message: message})
}

// RespondError maps an application error to its HTTP status and writes
// the failure envelope. Untyped errors become 500 and are logged; their
// details never reach the client.
func RespondError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.Status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	RespondJSON(w, appErr.Status, errorEnvelope{Success: false, Message: appErr.Message})
}

// RespondErrorMessage writes a failure envelope with an explicit status
// and message, for errors raised directly in the handler layer.
func RespondErrorMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, errorEnvelope{Success: false, Message: message})
}

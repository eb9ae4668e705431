// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package apperr classifies the failures of the estimate gateway and maps
// them onto HTTP status codes and the JSON error envelope returned to callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names a class of failure.
type Kind string

const (
	// KindValidation is a client-caused failure such as a missing field.
	KindValidation Kind = "validation"
	// KindConfiguration means a required setting is absent at request time.
	KindConfiguration Kind = "configuration"
	// KindGateway means the flow answered with a non-success status.
	KindGateway Kind = "gateway"
	// KindInternal covers network, parse and unexpected failures.
	KindInternal Kind = "internal"
)

// Envelope titles surfaced in the "error" field.
const (
	TitleMissingFields  = "Missing required fields"
	TitleInvalidRequest = "Invalid request"
	TitleConfiguration  = "Configuration error"
	TitleFlowFailed     = "Flow call failed"
	TitleInternal       = "Internal server error"
)

// Error is the single error type returned by gateway components.
type Error struct {
	Kind    Kind
	Title   string
	Message string
	// UpstreamStatus and UpstreamPayload are only set for KindGateway.
	UpstreamStatus  int
	UpstreamPayload any
	Cause           error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// MissingFields reports absent required input fields.
func MissingFields(message string) *Error {
	return &Error{Kind: KindValidation, Title: TitleMissingFields, Message: message}
}

// InvalidRequest reports a body that could not be decoded.
func InvalidRequest(cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		Title:   TitleInvalidRequest,
		Message: "request body must be a valid JSON object",
		Cause:   cause,
	}
}

// Configuration reports a required setting that is not configured.
func Configuration(setting string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Title:   TitleConfiguration,
		Message: fmt.Sprintf("%s is not configured", setting),
	}
}

// Gateway reports a non-success response from the flow, keeping its status
// and payload for diagnostics.
func Gateway(status int, payload any) *Error {
	return &Error{
		Kind:            KindGateway,
		Title:           TitleFlowFailed,
		Message:         fmt.Sprintf("flow returned status %d", status),
		UpstreamStatus:  status,
		UpstreamPayload: payload,
	}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Title: TitleInternal, Message: message, Cause: cause}
}

// From returns err as an *Error, classifying anything unknown as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err.Error(), err)
}

// KindOf returns the kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

// HTTPStatus maps err onto a response status.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).Status()
}

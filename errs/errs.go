// Package errs defines the typed failures surfaced by the generation pipeline.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the kind of failure.
type Code string

const (
	CodeValidation    Code = "validation"
	CodeConfiguration Code = "configuration"
	CodeGeneration    Code = "generation"
)

// Error is the error type returned across the pipeline boundary.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports missing or malformed user input.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// Configuration reports a credential or setup problem.
func Configuration(message string, err error) *Error {
	return &Error{Code: CodeConfiguration, Message: message, Err: err}
}

// Generation reports a failure from the remote service, before or during streaming.
func Generation(message string, err error) *Error {
	return &Error{Code: CodeGeneration, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsValidation(err error) bool    { return CodeOf(err) == CodeValidation }
func IsConfiguration(err error) bool { return CodeOf(err) == CodeConfiguration }
func IsGeneration(err error) bool    { return CodeOf(err) == CodeGeneration }

// Status returns the HTTP status for err, defaulting to 500 for untyped errors.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

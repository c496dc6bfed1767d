// Package domainerrors carries a stable failure category through service,
// store and transport layers. Only httputil maps codes to HTTP statuses.
package domainerrors

import "errors"

type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"

	CodeNotInitialized     Code = "not_initialized"     // setting or registry read before initialize
	CodeAlreadyInitialized Code = "already_initialized" // second initialize of a single-use component
	CodeVerificationFailed Code = "verification_failed" // proof rejected, or the verifier aborted
	CodeIssuanceFailed     Code = "issuance_failed"     // the nested mint aborted
)

// Error is a coded failure with an optional cause. Message is safe to show
// to API clients unless Code is CodeInternal.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, &Error{Code: c})
// finds c anywhere in the chain.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches msg to err. A code already present on err is kept and code
// only applies to foreign errors.
func Wrap(err error, code Code, msg string) error {
	if inner, ok := outermost(err); ok {
		code = inner.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// Reclassify wraps err under code regardless of any code it already has.
// Component boundaries use it to report their own failure category.
func Reclassify(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether the outermost *Error in err's chain has code.
func HasCode(err error, code Code) bool {
	e, ok := outermost(err)
	return ok && e.Code == code
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when
// there is none.
func CodeOf(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return CodeInternal
}

func outermost(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

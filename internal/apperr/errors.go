// Package apperr is the error taxonomy shared by services and handlers.
// Services return *Error values; handlers turn them into responses with Respond.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindDelivery     Kind = "delivery"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Codes carried to the client.
const (
	CodeValidation         = "ValidationError"
	CodeTokenNotFound      = "TokenNotFound"
	CodeUserNotFound       = "UserNotFound"
	CodeTaskNotFound       = "TaskNotFound"
	CodeAlreadyVerified    = "AlreadyVerified"
	CodeUserAlreadyExists  = "UserAlreadyExists"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeDelivery           = "DeliveryError"
	CodeUnauthorized       = "Unauthorized"
	CodeForbidden          = "Forbidden"
	CodeInternal           = "InternalError"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so that sentinel values below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

var (
	ErrTokenNotFound      = &Error{Kind: KindNotFound, Code: CodeTokenNotFound, Message: "Invalid or expired token"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Code: CodeUserNotFound, Message: "User not found"}
	ErrTaskNotFound       = &Error{Kind: KindNotFound, Code: CodeTaskNotFound, Message: "Task not found"}
	ErrAlreadyVerified    = &Error{Kind: KindConflict, Code: CodeAlreadyVerified, Message: "User is already verified"}
	ErrUserAlreadyExists  = &Error{Kind: KindConflict, Code: CodeUserAlreadyExists, Message: "User already exists"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Code: CodeInvalidCredentials, Message: "Invalid credentials"}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: "Not authorized"}
	ErrForbidden          = &Error{Kind: KindUnauthorized, Code: CodeForbidden, Message: "Access denied"}
)

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg}
}

func Delivery(cause error) *Error {
	return &Error{Kind: KindDelivery, Code: CodeDelivery, Message: "Email could not be sent", Err: cause}
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "Internal server error", Err: cause}
}

// From normalizes any error into an *Error. Unknown errors become internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// KindOf reports the kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

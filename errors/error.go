package errors

import stderrors "errors"

// Error is a coded error shared across packages. Code ranges are owned by the
// package that declares them.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Cause   error  // the underlying error
	Details any    `json:"details,omitempty"`
}

func NewError(code int64, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *Error) GetCode() int64 {
	return e.Code
}

func (e *Error) GetMessage() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) GetDetails() any {
	return e.Details
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or 0.
func CodeOf(err error) int64 {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}

package apierr

import (
	"fmt"
	"net/http"
)

// Error is a request-shape failure detected before any usecase runs.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Status != 0:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// InvalidBody reports an unparsable or mistyped JSON body.
func InvalidBody(err error) *Error {
	return New(http.StatusBadRequest, "invalid_request", err)
}

// InvalidID reports a path or body identifier that is not a UUID. The code
// names the field, e.g. "invalid_user_id".
func InvalidID(field string, err error) *Error {
	return New(http.StatusBadRequest, "invalid_"+field, err)
}

// MissingField reports a required field absent from an otherwise valid body.
func MissingField(field string) *Error {
	return New(http.StatusBadRequest, "validation", fmt.Errorf("%s is required", field))
}

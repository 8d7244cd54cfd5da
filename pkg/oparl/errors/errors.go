package errors

import (
	"fmt"
)

var ErrInternal = fmt.Errorf("internal error")
var ErrNotFound = fmt.Errorf("not found")
var ErrTransport = fmt.Errorf("transport error")
var ErrBadResponse = fmt.Errorf("bad response")
var ErrMalformedDocument = fmt.Errorf("malformed document")
var ErrFieldNotFound = fmt.Errorf("field not found")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewBadResponseError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrBadResponse,
	}
}

//NewMalformedDocumentError reports a response that parsed as JSON but is not
//usable as an OParl document (wrong top level type, missing id or type)
func NewMalformedDocumentError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrMalformedDocument,
	}
}

func NewFieldNotFoundError(field string) error {
	return &myError{
		msg:    fmt.Sprintf("field %q not found", field),
		target: ErrFieldNotFound,
	}
}

//TransportError carries the HTTP status code of a failed fetch
type TransportError struct {
	Status int
	msg    string
}

func (t TransportError) Error() string        { return t.msg }
func (t TransportError) Is(target error) bool { return target == ErrTransport }

func NewTransportError(status int, msg string) error {
	return &TransportError{
		Status: status,
		msg:    msg,
	}
}

package errors

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestSentinelMatching(t *testing.T) {
	is := is.New(t)

	is.True(errors.Is(NewNotFoundError("gone"), ErrNotFound))
	is.True(errors.Is(NewMalformedDocumentError("nope"), ErrMalformedDocument))
	is.True(errors.Is(NewFieldNotFoundError("name"), ErrFieldNotFound))
	is.True(!errors.Is(NewNotFoundError("gone"), ErrTransport))
}

func TestTransportErrorCarriesStatus(t *testing.T) {
	is := is.New(t)

	err := NewTransportError(503, "service unavailable")
	is.True(errors.Is(err, ErrTransport))

	te := &TransportError{}
	is.True(errors.As(err, &te))
	is.Equal(te.Status, 503)
}

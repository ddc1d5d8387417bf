package framegov

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestConsumerPanicErrorMessage(t *testing.T) {
	err := &ConsumerPanicError{Name: "particles", Value: "index out of range"}
	if got := err.Error(); !strings.Contains(got, `"particles"`) ||
		!strings.Contains(got, "index out of range") {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestConsumerPanicErrorUnwrap(t *testing.T) {
	err := &ConsumerPanicError{Name: "net", Value: io.ErrUnexpectedEOF}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected errors.Is to match the wrapped error")
	}

	plain := &ConsumerPanicError{Name: "net", Value: "not an error"}
	if plain.Unwrap() != nil {
		t.Error("non-error panic value should not unwrap")
	}
}

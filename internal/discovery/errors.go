package discovery

import (
	"errors"
	"fmt"
)

// ErrNoAddress is returned when a source yields no usable address.
var ErrNoAddress = errors.New("no usable address")

type UnexpectedResponseError struct {
	url    string
	reason string
}

func NewUnexpectedResponseError(url, reason string) *UnexpectedResponseError {
	return &UnexpectedResponseError{url: url, reason: reason}
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected data from %s: %s", e.url, e.reason)
}

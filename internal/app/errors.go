package app

import (
	"errors"
)

// Kind classifies a prediction failure.
type Kind string

const (
	// KindInvalidInput: the request carried no usable input.
	KindInvalidInput Kind = "InvalidInput"
	// KindNoMatch: none of the submitted symptoms is in the vocabulary.
	KindNoMatch Kind = "NoMatch"
	// KindInternalFault: the classifier or another dependency failed.
	KindInternalFault Kind = "InternalFault"
)

// Error is returned by App operations. Hint carries a vocabulary sample for
// NoMatch errors.
type Error struct {
	Kind    Kind
	Message string
	Hint    []string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, InternalFault for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternalFault
}

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func internalFault(err error) *Error {
	return &Error{Kind: KindInternalFault, Message: err.Error(), Err: err}
}

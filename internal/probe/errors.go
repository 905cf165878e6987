package probe

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrPromptTooLong  = errors.New("prompt is too long")
	ErrDecode         = errors.New("failed to decode")
)

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

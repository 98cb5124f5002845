package submission

import "errors"

var (
	// ErrNotIdle is returned when a submit request arrives outside the idle state.
	ErrNotIdle = errors.New("submission: not idle")
	// ErrTermsNotAccepted signals the terms gate blocked the request.
	ErrTermsNotAccepted = errors.New("submission: terms not accepted")
	// ErrInvalidForm signals at least one field failed validation.
	ErrInvalidForm = errors.New("submission: form has invalid fields")
)

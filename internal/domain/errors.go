package domain

import "errors"

// Every backend error collapses into one of these per form.
var (
	ErrInvalidLogin = errors.New("invalid login")
	ErrSubmitFailed = errors.New("establishment submission failed")
)

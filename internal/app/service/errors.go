package service

import "errors"

// Resolution and analytics errors surfaced to the HTTP layer. Handlers map
// these to status codes; anything else is an internal error.
var (
	// ErrInvalidRequest signals malformed, user-correctable input.
	ErrInvalidRequest = errors.New("invalid identifier")
	// ErrNotFound signals that no QR code matches the identifier.
	ErrNotFound = errors.New("qr code not found")
	// ErrGone signals a deactivated QR code.
	ErrGone = errors.New("qr code is deactivated")
	// ErrUnprocessable signals that no destination could be derived.
	ErrUnprocessable = errors.New("destination cannot be derived")
	// ErrForbidden signals an analytics ownership mismatch.
	ErrForbidden = errors.New("qr code belongs to another user")
)

package detection

import "errors"

var (
	// ErrInvalidInput marks precondition failures: mismatched frame sizes,
	// bad blur radii, malformed borders, empty sequences.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDecode is returned by frame sources when an image cannot be decoded.
	ErrDecode = errors.New("decode error")
)

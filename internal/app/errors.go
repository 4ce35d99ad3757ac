package service

import "errors"

// Sentinel kinds for match errors.
var (
	ErrMatchOver    = errors.New("match is over")
	ErrMatchNotOver = errors.New("match is not over")
)

package repository

import "errors"

// Sentinel kinds for ranking store errors.
var (
	ErrInvalidName  = errors.New("invalid player name")
	ErrInvalidScore = errors.New("invalid score")
	ErrStoreClosed  = errors.New("ranking store closed")
)

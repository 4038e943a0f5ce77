package repository

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotFound     = errors.New("application not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
	ErrEmptyID      = errors.New("application id must not be empty")
)

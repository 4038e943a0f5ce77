package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("evaluation queue is full")
	ErrNotFound     = errors.New("application not found")
)

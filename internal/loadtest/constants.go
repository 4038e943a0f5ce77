package loadtest

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Submission retry constants. A 429 means the evaluation queue is full and
// the application id was forgotten, so the same body can be resent.
const (
	maxSubmitAttempts = 5
	retryBackoff      = 50 * time.Millisecond
)

// Runner configuration constants.
const (
	DefaultWaitTimeout   = 2 * time.Minute
	DefaultPollInterval  = 250 * time.Millisecond
	PercentageMultiplier = 100
	progressInterval     = time.Second
)

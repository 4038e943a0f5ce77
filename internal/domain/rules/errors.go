package rules

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidRuleset = errors.New("invalid ruleset")
	ErrLoadRuleset    = errors.New("load ruleset failed")
	ErrUnknownRuleset = errors.New("unknown ruleset version")
	ErrDuplicate      = errors.New("ruleset version already registered")
)

package app

import "errors"

// Sentinel kinds for scorer selection errors.
var (
	ErrUnknownStrategy = errors.New("unknown scoring strategy")
)

package tier

import "errors"

// Sentinel kinds for tier errors.
var (
	ErrUnknownTier = errors.New("unknown scoring tier")
)

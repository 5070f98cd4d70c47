package mf

import "errors"

// Sentinel kinds for adapter errors.
var (
	ErrNotPrimed     = errors.New("mf adapter not primed with community data")
	ErrNoteNotScored = errors.New("note missing from matrix factorization output")
	ErrEngineFailed  = errors.New("matrix factorization engine failed")
)

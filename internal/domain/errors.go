package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInputMissing       = errors.New("input file not found")
	ErrMissingColumns     = errors.New("missing required columns")
	ErrLexiconUnavailable = errors.New("sentiment lexicon unavailable")
	ErrStoreUnavailable   = errors.New("persistence store unavailable")
)

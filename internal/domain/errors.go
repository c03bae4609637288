package domain

import "errors"

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrConflictingEdits    = errors.New("conflicting edits")
	ErrInvalidEdit         = errors.New("invalid edit")
	ErrCacheMiss           = errors.New("no cache entry")
	ErrInvalidConfig       = errors.New("invalid config")
)

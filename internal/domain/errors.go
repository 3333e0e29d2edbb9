package domain

import "errors"

var (
	ErrContentNotFound  = errors.New("content not found")
	ErrContentPublished = errors.New("content is already published")
	ErrStoreUnavailable = errors.New("grant store unavailable")
	ErrRevisionConflict = errors.New("grant document revision conflict")
)

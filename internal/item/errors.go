package item

import "errors"

var (
	ErrInvalidID        = errors.New("identifier is not a positive integer")
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrBelowThreshold   = errors.New("payload at or below minimum size")
	ErrNoStrategies     = errors.New("no resolution strategies configured")
	ErrBodyTooLarge     = errors.New("response body exceeds size limit")
)

package models

import "errors"

// Custom errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidValue = errors.New("invalid column value")
)

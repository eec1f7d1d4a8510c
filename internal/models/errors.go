package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrInsufficientHistory = errors.New("insufficient game history")
	ErrNoOdds              = errors.New("no odds available")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

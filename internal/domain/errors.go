package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidOwnerID  = errors.New("invalid owner id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidImage    = errors.New("invalid image reference")
)

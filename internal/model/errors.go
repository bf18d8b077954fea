package model

import "errors"

var (
	ErrNotFound          = errors.New("product not found")
	ErrInvalidID         = errors.New("invalid product id")
	ErrInvalidProduct    = errors.New("invalid product data")
	ErrMissingSearchTerm = errors.New("name query required")
)

package services

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrScanNotFound    = errors.New("scan not found")
	ErrImageRequired   = errors.New("image is required")
)

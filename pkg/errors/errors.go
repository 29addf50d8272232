package errors

import "errors"

// Repositories wrap these so handlers can map them with errors.Is.
var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("resource already exists")
)

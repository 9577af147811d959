package repositories

import "errors"

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("record not found")

// ErrInUse is returned when a row cannot be deleted while others refer to it.
var ErrInUse = errors.New("record in use")

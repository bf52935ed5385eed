package store

import (
	"errors"
	"strings"
)

// ErrDuplicateShow indicates a create collided with the per-profile dedup indexes.
var ErrDuplicateShow = errors.New("duplicate show")

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

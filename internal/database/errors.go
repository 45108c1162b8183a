package database

import "errors"

// ErrNotFound is returned when a requested document does not exist. Callers
// branch on it with errors.Is to distinguish missing records from datastore
// failures.
var ErrNotFound = errors.New("not found")

package repository

import "github.com/alexanderramin/mapcheck/internal/domain"

// ErrNotFound is returned when a row or key does not exist.
var ErrNotFound = domain.ErrNotFound

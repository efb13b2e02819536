package persistence

import (
	"fmt"

	"github.com/alexanderramin/mapcheck/internal/domain"
)

// StorageReadError reports stored progress that could not be read or
// decoded. Load recovers from it with an empty state; callers only log it.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("%s %q: %v", domain.ErrStorageRead, e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

func (e *StorageReadError) Is(target error) bool { return target == domain.ErrStorageRead }

// StorageWriteError reports a failed write. In-memory state stays correct.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("%s %q: %v", domain.ErrStorageWrite, e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

func (e *StorageWriteError) Is(target error) bool { return target == domain.ErrStorageWrite }

// ImportParseError reports a snapshot that is not a JSON object. It is
// meant to be shown to the user as is.
type ImportParseError struct {
	Err error
}

func (e *ImportParseError) Error() string {
	return fmt.Sprintf("%s: %v", domain.ErrImportParse, e.Err)
}

func (e *ImportParseError) Unwrap() error { return e.Err }

func (e *ImportParseError) Is(target error) bool { return target == domain.ErrImportParse }

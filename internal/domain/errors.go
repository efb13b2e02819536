package domain

import "errors"

var (
	// ErrInvalidProjectType is the configuration error for a project type
	// outside both/map/map-lite. The previous selection is always retained.
	ErrInvalidProjectType = errors.New("invalid project type")

	// ErrUnknownItem is returned when an item ID does not exist in the catalog.
	ErrUnknownItem = errors.New("unknown checklist item")

	// ErrStorageRead marks persisted progress that could not be read or parsed.
	ErrStorageRead = errors.New("reading stored progress")

	// ErrStorageWrite marks a failed write of progress to storage.
	ErrStorageWrite = errors.New("writing stored progress")

	// ErrImportParse marks an imported snapshot that is not a JSON object.
	ErrImportParse = errors.New("invalid progress file")

	// ErrInvalidCatalog marks a catalog document that fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// ErrNotFound is returned by stores when a key or record does not exist.
var ErrNotFound = errors.New("not found")

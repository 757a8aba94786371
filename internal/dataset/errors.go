package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mapcrown/mapcrown/internal/place"
)

var (
	// ErrNoPath means no data file is configured for the category.
	ErrNoPath = errors.New("no data file configured")
	// ErrNotFound means the source has nothing at the configured path.
	ErrNotFound = errors.New("data file not found")
	// ErrInvalidDocument means the file is not a GeoJSON document with a features array.
	ErrInvalidDocument = errors.New("invalid GeoJSON document")
)

// DataError reports a dataset that is missing, unreachable or malformed.
type DataError struct {
	Category place.Category
	Path     string
	Err      error
}

func (e *DataError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loading %s: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("loading %s from %s: %v", e.Category, e.Path, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// Hint names the configuration most likely at fault.
func (e *DataError) Hint() string {
	switch {
	case errors.Is(e.Err, ErrNoPath):
		return fmt.Sprintf("Set MAPCROWN_DATA_FILE_%s to the dataset file name", strings.ToUpper(string(e.Category)))
	case errors.Is(e.Err, ErrInvalidDocument):
		return "The file must be a GeoJSON FeatureCollection with a features array"
	default:
		return "Check /data filenames and extensions (.json)"
	}
}

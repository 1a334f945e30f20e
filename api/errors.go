package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDatasetNotFound means no directory under the search root carries the
	// requested dataset name.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrUnknownSeedType means no file for the seed type exists anywhere in the chain.
	ErrUnknownSeedType = errors.New("unknown seed type")
	// ErrRecordNotFound means an id or label selector matched nothing.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidConfiguration means the data source cannot be used.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNotLoaded means the dataset was queried before it was built.
	ErrNotLoaded = errors.New("dataset not loaded")
)

// DatasetNotFoundError reports an absent dataset together with the names that
// would have been accepted.
type DatasetNotFoundError struct {
	Name      string
	Available []string
}

func (e *DatasetNotFoundError) Error() string {
	var b strings.Builder
	if strings.TrimSpace(e.Name) == "" {
		b.WriteString("a valid dataset is required")
	} else {
		fmt.Fprintf(&b, "dataset %q not found", e.Name)
	}
	fmt.Fprintf(&b, "; Available datasets: %s", strings.Join(e.Available, ", "))
	return b.String()
}

func (e *DatasetNotFoundError) Unwrap() error { return ErrDatasetNotFound }

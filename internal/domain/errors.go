package domain

import (
	"errors"
	"fmt"
)

// DataError marks an input defect that makes a valid run impossible:
// a missing required column, an empty filtered training set, an empty
// observation stream. A DataError aborts the run before any window
// document is produced.
type DataError struct {
	Err error
}

func (e *DataError) Error() string { return "data: " + e.Err.Error() }

func (e *DataError) Unwrap() error { return e.Err }

// Dataf builds a DataError from a format string.
func Dataf(format string, args ...any) error {
	return &DataError{Err: fmt.Errorf(format, args...)}
}

// IsDataError reports whether any error in the chain is a DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

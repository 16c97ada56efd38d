package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat matches any *UnsupportedFormatError via errors.Is.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrInsufficientColumnsForChart is reported when fewer than two numeric
	// columns remain. It is a warning; the pipeline continues.
	ErrInsufficientColumnsForChart = errors.New("not enough numeric columns for visualization")

	// ErrEmptyChart is reported when there are numeric columns but no rows.
	ErrEmptyChart = errors.New("no rows to visualize")

	ErrEmptyFile       = errors.New("empty file")
	ErrSessionNotFound = errors.New("session not found")
	ErrFileNotFound    = errors.New("file not found")
	ErrTooManyFiles    = errors.New("too many files in session")
	ErrTooManyActions  = errors.New("too many clean actions for file")
	ErrNotConverted    = errors.New("file has not been converted yet")
	ErrCleanDisabled   = errors.New("clean data is not enabled for this file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrNoFiles         = errors.New("no files uploaded")

	// ErrVisualizationOff is returned when a chart is requested for a file
	// whose visualization toggle is off.
	ErrVisualizationOff = errors.New("visualization is off")
)

// UnsupportedFormatError identifies the extension that could not be handled.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file type: %s", ext)
}

// Is lets errors.Is(err, ErrUnsupportedFormat) match.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

package config

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNilConfiguration is returned when validating a nil configuration.
var ErrNilConfiguration = errors.New("configuration cannot be nil")

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// FileError represents a configuration file error with location info.
type FileError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *FileError) Error() string {
	if e.Line > 0 {
		return e.Path + " (line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + "): " + e.Message
	}
	return e.Path + ": " + e.Message
}

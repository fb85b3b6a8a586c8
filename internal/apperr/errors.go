// Package apperr defines the error kinds that decide how far a failure
// propagates: configuration and data errors abort a run, matching errors
// abort a single consumer.
package apperr

import (
	"errors"

	"github.com/rotisserie/eris"
)

// ConfigurationError marks a missing or malformed configuration option.
type ConfigurationError struct {
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Option == "" {
		return "configuration: " + e.Err.Error()
	}
	return "configuration: " + e.Option + ": " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Configuration wraps err as a ConfigurationError for the named option.
func Configuration(option string, err error) *ConfigurationError {
	return &ConfigurationError{Option: option, Err: err}
}

// Configurationf builds a ConfigurationError from a format string.
func Configurationf(option, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Option: option, Err: eris.Errorf(format, args...)}
}

// DataError marks a record that does not satisfy the configured shape.
type DataError struct {
	RecordID string
	Err      error
}

func (e *DataError) Error() string {
	if e.RecordID == "" {
		return "data: " + e.Err.Error()
	}
	return "data: record " + e.RecordID + ": " + e.Err.Error()
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// Data wraps err as a DataError for the given record id.
func Data(recordID string, err error) *DataError {
	return &DataError{RecordID: recordID, Err: err}
}

// Dataf builds a DataError for the given record id.
func Dataf(recordID, format string, args ...any) *DataError {
	return &DataError{RecordID: recordID, Err: eris.Errorf(format, args...)}
}

// MatchingError marks a failure inside text matching or a lexicon lookup.
type MatchingError struct {
	Word string
	Err  error
}

func (e *MatchingError) Error() string {
	if e.Word == "" {
		return "matching: " + e.Err.Error()
	}
	return "matching: " + e.Word + ": " + e.Err.Error()
}

func (e *MatchingError) Unwrap() error {
	return e.Err
}

// Matching wraps err as a MatchingError for the given word.
func Matching(word string, err error) *MatchingError {
	return &MatchingError{Word: word, Err: err}
}

// IsConfiguration reports whether err has a ConfigurationError in its chain.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsData reports whether err has a DataError in its chain.
func IsData(err error) bool {
	var target *DataError
	return errors.As(err, &target)
}

// IsMatching reports whether err has a MatchingError in its chain.
func IsMatching(err error) bool {
	var target *MatchingError
	return errors.As(err, &target)
}

// Fatal reports whether err must abort the whole run rather than one consumer.
func Fatal(err error) bool {
	return IsConfiguration(err) || IsData(err)
}

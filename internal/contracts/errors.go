package contracts

import (
	"errors"
	"fmt"
)

// SchemaError means a required column is absent from a dataset header
type SchemaError struct {
	Field  string
	Source string
}

func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("missing required field %q in %s", e.Field, e.Source)
}

// SourceNotFoundError means an input dataset does not exist
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("dataset not found: %s", e.Path)
}

// ProcessingError wraps any other failure with the stage it happened in
type ProcessingError struct {
	Stage Stage
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// ErrEmptyRecordSet is returned when there is nothing to bin
var ErrEmptyRecordSet = errors.New("empty record set")

// Processing wraps err as a ProcessingError unless it already carries a kind
func Processing(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *SchemaError
	var nf *SourceNotFoundError
	var pe *ProcessingError
	if errors.As(err, &se) || errors.As(err, &nf) || errors.As(err, &pe) {
		return err
	}
	return &ProcessingError{Stage: stage, Err: err}
}

// Classify maps an error from a year's run to its result status and kind
func Classify(err error) (Status, ErrorKind) {
	if err == nil {
		return StatusSuccess, ""
	}

	var nf *SourceNotFoundError
	if errors.As(err, &nf) {
		return StatusSkipped, KindSourceNotFound
	}

	var se *SchemaError
	if errors.As(err, &se) {
		return StatusFailed, KindSchema
	}

	return StatusFailed, KindProcessing
}

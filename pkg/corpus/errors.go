package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is returned when an input file is missing a required column
	// or contains an empty text field. Schema failures abort the whole run.
	ErrSchema = errors.New("input schema violation")

	// ErrEmptyCorpus is returned when the domain set is empty after
	// deduplication against the query and test sets.
	ErrEmptyCorpus = errors.New("domain corpus is empty after deduplication")
)

// SchemaError describes which file and column violated the input contract.
type SchemaError struct {
	Path   string
	Column string
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("input schema violation in %s: column %q, row %d: %s", e.Path, e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("input schema violation in %s: column %q: %s", e.Path, e.Column, e.Reason)
}

// Unwrap makes errors.Is(err, ErrSchema) work with wrapped errors.
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

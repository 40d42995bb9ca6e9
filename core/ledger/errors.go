package ledger

import (
	"errors"
	"fmt"
)

// ErrDuplicateRow is returned by Append for an identifier that already has a row.
var ErrDuplicateRow = errors.New("ledger: duplicate row")

// ErrRowNotFound is returned when updating an identifier without a row.
var ErrRowNotFound = errors.New("ledger: row not found")

// PersistenceError reports that the ledger file could not be read or written.
// It is always fatal to a run.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

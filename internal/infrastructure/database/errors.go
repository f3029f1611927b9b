package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Constraint violations reported by the store.
var (
	// ErrUniqueViolation indicates a UNIQUE or PRIMARY KEY constraint failed.
	ErrUniqueViolation = errors.New("database: unique constraint violated")

	// ErrForeignKeyViolation indicates a referenced row does not exist.
	ErrForeignKeyViolation = errors.New("database: foreign key constraint violated")
)

// Classify wraps SQLite constraint failures in ErrUniqueViolation or
// ErrForeignKeyViolation, keeping the driver error in the chain.
// Other errors, including nil, are returned unchanged.
func Classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	default:
		return err
	}
}

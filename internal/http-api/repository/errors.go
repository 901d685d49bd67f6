package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// ErrDuplicate wraps unique-constraint violations. The wrapped message
// carries the constraint name.
var ErrDuplicate = errors.New("duplicate record")

// DuplicateConstraint returns the violated constraint name when err is a
// duplicate error.
func DuplicateConstraint(err error) (string, bool) {
	if !errors.Is(err, ErrDuplicate) {
		return "", false
	}
	var dup *duplicateError
	if errors.As(err, &dup) {
		return dup.constraint, true
	}
	return "", true
}

type duplicateError struct {
	constraint string
	cause      error
}

func (e *duplicateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicate, e.constraint)
}

func (e *duplicateError) Is(target error) bool { return target == ErrDuplicate }

func (e *duplicateError) Unwrap() error { return e.cause }

// Translate maps driver errors onto repository errors.
func Translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &duplicateError{constraint: pgErr.ConstraintName, cause: err}
	}
	return err
}

// escapeLike escapes the LIKE wildcards in a user supplied search term.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

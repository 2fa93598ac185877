package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors for unique-constraint violations. Mapping these off the
// driver error means the loser of a concurrent insert race still gets a
// deterministic conflict instead of an opaque database error.
var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateEnrollment = errors.New("enrollment number already registered")
	ErrDuplicateFeedback   = errors.New("feedback already submitted for this complaint")
)

const pqUniqueViolation = "23505"

// uniqueViolation returns the violated constraint name when err is a
// PostgreSQL unique violation, or "" otherwise.
func uniqueViolation(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

// mapUserConflict translates user-table unique violations to sentinels.
func mapUserConflict(err error) error {
	switch uniqueViolation(err) {
	case "users_email_key":
		return ErrDuplicateEmail
	case "users_enrollment_number_uniq":
		return ErrDuplicateEnrollment
	}
	return err
}

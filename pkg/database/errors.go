package database

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// IsUniqueViolation reports whether err is a Postgres duplicate key
// error. Insert races on unique constraints resolve through it.
func IsUniqueViolation(err error) bool {
	return pqErrorCode(err) == uniqueViolationCode
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key
// error, meaning the referenced row does not exist.
func IsForeignKeyViolation(err error) bool {
	return pqErrorCode(err) == foreignKeyViolationCode
}

func pqErrorCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

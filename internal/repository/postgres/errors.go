package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"parties247/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidTextRepr     = "22P02"
)

// mapError translates driver errors into domain sentinels. Malformed UUIDs
// and missing rows are both reported as ErrNotFound.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var perr *pq.Error
	if errors.As(err, &perr) {
		switch perr.Code {
		case pqUniqueViolation:
			return domain.ErrConflict
		case pqForeignKeyViolation, pqInvalidTextRepr:
			return domain.ErrNotFound
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

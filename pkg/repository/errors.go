package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// Errors names the domain errors a repository maps driver errors onto.
// Nil fields leave the corresponding driver error unchanged.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates sql.ErrNoRows and PostgreSQL unique (23505) and check
// (23514) violations into the configured domain errors.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && e.NotFound != nil {
		return e.NotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && e.Duplicate != nil:
			return e.Duplicate
		case pgErr.Code == pgCheckViolation && e.Invalid != nil:
			return e.Invalid
		}
	}

	return err
}

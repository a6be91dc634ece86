package repository

import (
	"errors"

	"predman/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// translate maps driver errors onto domain sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(what + " not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.Conflict(what + " already exists")
		case pgForeignKeyViolation:
			return domain.NotFound(what + " references a missing row")
		case pgInvalidText:
			return domain.NotFound(what + " not found")
		case pgCheckViolation:
			return domain.Invalid(what + " violates " + pgErr.ConstraintName)
		}
	}
	return err
}

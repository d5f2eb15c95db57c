package postgres

import (
	"errors"

	"github.com/investingindigital/url-shortener/internal/database"
	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolationErrCode = "23505"

const (
	shortCodeConstraint = "urls_short_code_key"
	urlHashConstraint   = "urls_url_hash_key"
	domainConstraint    = "domains_domain_key"
)

// uniqueViolationError maps a unique constraint violation to the sentinel
// error for the violated constraint. It returns nil for any other error.
func uniqueViolationError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.SQLState() != uniqueViolationErrCode {
		return nil
	}

	switch pgErr.ConstraintName {
	case shortCodeConstraint:
		return database.ErrShortCodeExists
	case urlHashConstraint:
		return database.ErrURLHashExists
	case domainConstraint:
		return database.ErrDomainExists
	default:
		return nil
	}
}

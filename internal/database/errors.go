package database

import "errors"

var (
	// ErrShortCodeExists is returned when an insert or rename loses the
	// short code uniqueness constraint to a concurrent writer.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLHashExists is returned when the URL hash uniqueness constraint
	// is violated, meaning the URL is already mapped by another record.
	ErrURLHashExists = errors.New("url hash exists")
	// ErrURLNotFound is returned when no URL record matches the lookup.
	ErrURLNotFound = errors.New("url not found")
	// ErrDomainExists is returned when a domain is already registered,
	// regardless of whether the existing record is active.
	ErrDomainExists = errors.New("domain exists")
	// ErrDomainNotFound is returned when no domain record matches the lookup.
	ErrDomainNotFound = errors.New("domain not found")
)

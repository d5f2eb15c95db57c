package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/investingindigital/url-shortener/internal/database"
	"github.com/investingindigital/url-shortener/internal/models"
	"github.com/jmoiron/sqlx"
)

type domainRecord struct {
	ID          int64     `db:"id"`
	Domain      string    `db:"domain"`
	RedirectURL string    `db:"redirect_url"`
	CreatedAt   time.Time `db:"created_at"`
	IsActive    bool      `db:"is_active"`
}

func (r *domainRecord) toDomain() *models.Domain {
	return &models.Domain{
		ID:          r.ID,
		Domain:      r.Domain,
		RedirectURL: r.RedirectURL,
		CreatedAt:   r.CreatedAt,
		IsActive:    r.IsActive,
	}
}

// DomainRepository persists domain redirect records. The domain string is
// the natural key, unique regardless of is_active.
type DomainRepository struct {
	db *sqlx.DB
}

func NewDomainRepository(db *sqlx.DB) *DomainRepository {
	return &DomainRepository{
		db: db,
	}
}

// Create inserts a new domain record. A uniqueness violation surfaces as
// database.ErrDomainExists.
func (r *DomainRepository) Create(ctx context.Context, domain *models.Domain) (*models.Domain, error) {
	const op = "database.postgres.DomainRepository.Create"

	rec := new(domainRecord)
	query := `INSERT INTO domains(domain, redirect_url, is_active)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, domain.Domain, domain.RedirectURL, domain.IsActive)
	if err != nil {
		if dbErr := uniqueViolationError(err); dbErr != nil {
			return nil, fmt.Errorf("%s: %w", op, dbErr)
		}

		return nil, fmt.Errorf("%s: failed to create domain record: %w", op, err)
	}

	return rec.toDomain(), nil
}

// GetByDomain retrieves a domain record by its domain string regardless of
// whether the record is active.
func (r *DomainRepository) GetByDomain(ctx context.Context, domain string) (*models.Domain, error) {
	const op = "database.postgres.DomainRepository.GetByDomain"

	rec := new(domainRecord)
	query := `SELECT * FROM domains
		WHERE domain = $1`

	err := r.db.GetContext(ctx, rec, query, domain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrDomainNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get domain record: %w", op, err)
	}

	return rec.toDomain(), nil
}

// GetActiveByDomain retrieves an active domain record by its domain string.
func (r *DomainRepository) GetActiveByDomain(ctx context.Context, domain string) (*models.Domain, error) {
	const op = "database.postgres.DomainRepository.GetActiveByDomain"

	rec := new(domainRecord)
	query := `SELECT * FROM domains
		WHERE domain = $1 AND is_active`

	err := r.db.GetContext(ctx, rec, query, domain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrDomainNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get domain record: %w", op, err)
	}

	return rec.toDomain(), nil
}

// GetByID retrieves a domain record by its identifier.
func (r *DomainRepository) GetByID(ctx context.Context, id int64) (*models.Domain, error) {
	const op = "database.postgres.DomainRepository.GetByID"

	rec := new(domainRecord)
	query := `SELECT * FROM domains
		WHERE id = $1`

	err := r.db.GetContext(ctx, rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrDomainNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get domain record: %w", op, err)
	}

	return rec.toDomain(), nil
}

// ListActive returns all active domain records.
func (r *DomainRepository) ListActive(ctx context.Context) ([]*models.Domain, error) {
	const op = "database.postgres.DomainRepository.ListActive"

	var recs []domainRecord
	query := `SELECT * FROM domains
		WHERE is_active
		ORDER BY id`

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to list domain records: %w", op, err)
	}

	domains := make([]*models.Domain, 0, len(recs))
	for i := range recs {
		domains = append(domains, recs[i].toDomain())
	}

	return domains, nil
}

// Update rewrites the redirect target and active flag of a domain record.
func (r *DomainRepository) Update(ctx context.Context, domain *models.Domain) (*models.Domain, error) {
	const op = "database.postgres.DomainRepository.Update"

	rec := new(domainRecord)
	query := `UPDATE domains
		SET redirect_url = $1, is_active = $2
		WHERE id = $3
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, domain.RedirectURL, domain.IsActive, domain.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrDomainNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update domain record: %w", op, err)
	}

	return rec.toDomain(), nil
}

// Deactivate soft-deletes a domain record. The row is kept, which keeps the
// domain string reserved.
func (r *DomainRepository) Deactivate(ctx context.Context, id int64) error {
	const op = "database.postgres.DomainRepository.Deactivate"

	query := `UPDATE domains
		SET is_active = FALSE
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to deactivate domain record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrDomainNotFound)
	}

	return nil
}

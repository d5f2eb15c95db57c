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

type urlRecord struct {
	ID          int64     `db:"id"`
	OriginalURL string    `db:"original_url"`
	URLHash     string    `db:"url_hash"`
	ShortCode   string    `db:"short_code"`
	CreatedAt   time.Time `db:"created_at"`
	IsActive    bool      `db:"is_active"`
}

func (r *urlRecord) toURL() *models.URL {
	return &models.URL{
		ID:          r.ID,
		OriginalURL: r.OriginalURL,
		URLHash:     r.URLHash,
		ShortCode:   r.ShortCode,
		CreatedAt:   r.CreatedAt,
		IsActive:    r.IsActive,
	}
}

// URLRepository persists URL mapping records. Short code and URL hash
// uniqueness is enforced by the database; reclaim sequences run inside a
// single transaction so a code is never observably unbound.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Create inserts a new URL record. An inactive record holding the same
// short code is hard-deleted in the same transaction, freeing the code for
// reuse. A uniqueness violation at insert time surfaces as
// database.ErrShortCodeExists or database.ErrURLHashExists.
func (r *URLRepository) Create(ctx context.Context, url *models.URL) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	reclaimQuery := `DELETE FROM urls
		WHERE short_code = $1 AND NOT is_active`

	if _, err := tx.ExecContext(ctx, reclaimQuery, url.ShortCode); err != nil {
		return nil, fmt.Errorf("%s: failed to reclaim short code: %w", op, err)
	}

	rec := new(urlRecord)
	query := `INSERT INTO urls(original_url, url_hash, short_code, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING *`

	err = tx.GetContext(ctx, rec, query, url.OriginalURL, url.URLHash, url.ShortCode, url.IsActive)
	if err != nil {
		if dbErr := uniqueViolationError(err); dbErr != nil {
			return nil, fmt.Errorf("%s: %w", op, dbErr)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return rec.toURL(), nil
}

// GetByShortCode retrieves a URL record by its short code regardless of
// whether the record is active.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"

	rec := new(urlRecord)
	query := `SELECT * FROM urls
		WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.toURL(), nil
}

// GetByHash retrieves a URL record by its hash regardless of whether the
// record is active.
func (r *URLRepository) GetByHash(ctx context.Context, urlHash string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByHash"

	rec := new(urlRecord)
	query := `SELECT * FROM urls
		WHERE url_hash = $1`

	err := r.db.GetContext(ctx, rec, query, urlHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.toURL(), nil
}

// Reactivate flips an inactive record back to active, resurrecting its
// existing short code.
func (r *URLRepository) Reactivate(ctx context.Context, id int64) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Reactivate"

	rec := new(urlRecord)
	query := `UPDATE urls
		SET is_active = TRUE
		WHERE id = $1
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to reactivate url record: %w", op, err)
	}

	return rec.toURL(), nil
}

// Update rewrites a URL record in place. An inactive record other than the
// target holding the new short code is hard-deleted in the same transaction.
// The transaction rolls back entirely on failure, so no partial update is
// ever observable.
func (r *URLRepository) Update(ctx context.Context, url *models.URL) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Update"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	reclaimQuery := `DELETE FROM urls
		WHERE short_code = $1 AND NOT is_active AND id <> $2`

	if _, err := tx.ExecContext(ctx, reclaimQuery, url.ShortCode, url.ID); err != nil {
		return nil, fmt.Errorf("%s: failed to reclaim short code: %w", op, err)
	}

	rec := new(urlRecord)
	query := `UPDATE urls
		SET original_url = $1, url_hash = $2, short_code = $3, is_active = $4
		WHERE id = $5
		RETURNING *`

	err = tx.GetContext(ctx, rec, query, url.OriginalURL, url.URLHash, url.ShortCode, url.IsActive, url.ID)
	if err != nil {
		if dbErr := uniqueViolationError(err); dbErr != nil {
			return nil, fmt.Errorf("%s: %w", op, dbErr)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update url record: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return rec.toURL(), nil
}

// Deactivate soft-deletes a URL record. The row is kept so the mapping can
// be resurrected or its code reclaimed later.
func (r *URLRepository) Deactivate(ctx context.Context, shortCode string) error {
	const op = "database.postgres.URLRepository.Deactivate"

	query := `UPDATE urls
		SET is_active = FALSE
		WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to deactivate url record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/investingindigital/url-shortener/internal/database"
	"github.com/investingindigital/url-shortener/internal/models"
)

var (
	// ErrMaxRetriesExceeded is returned when the retry cap for generating a
	// unique short code is exceeded.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	// ErrShortCodeTaken is returned when the requested short code is held
	// by an active URL record.
	ErrShortCodeTaken = errors.New("short code taken by an active url")
	// ErrURLNotReachable is returned when a new redirect target fails the
	// reachability probe.
	ErrURLNotReachable = errors.New("url is not reachable")
)

// maxCodeRetries caps the random code generation loop. With 52^6 possible
// codes, hitting the cap means the table is effectively saturated.
const maxCodeRetries = 100

// URLRepository defines the interface for working with URL records at the
// business logic layer.
type URLRepository interface {
	// Create inserts a new URL record, hard-deleting any inactive record
	// holding the same short code in the same transaction.
	Create(ctx context.Context, url *models.URL) (*models.URL, error)

	// GetByShortCode retrieves a URL record by its short code, active or not.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetByHash retrieves a URL record by its hash, active or not.
	GetByHash(ctx context.Context, urlHash string) (*models.URL, error)

	// Reactivate flips an inactive record back to active.
	Reactivate(ctx context.Context, id int64) (*models.URL, error)

	// Update rewrites a URL record, hard-deleting any inactive record other
	// than the target that holds the new short code, in the same transaction.
	Update(ctx context.Context, url *models.URL) (*models.URL, error)

	// Deactivate soft-deletes a URL record by its short code.
	Deactivate(ctx context.Context, shortCode string) error
}

// URLUpdate describes a partial update of a URL record. Nil fields are left
// unchanged.
type URLUpdate struct {
	TargetURL *string
	ShortCode *string
	IsActive  *bool
}

// URLService implements short code allocation and lookup on top of a
// URLRepository. The repository's uniqueness constraints are the final
// arbiter for races; the service retries only self-detected in-process
// collisions, never a lost race.
type URLService struct {
	repo        URLRepository
	verifier    URLVerifier
	generate    func() (string, error)
	fingerprint func(string) string
}

// Option overrides a URLService collaborator, mainly for tests.
type Option func(*URLService)

// WithCodeGenerator replaces the random short code generator.
func WithCodeGenerator(generate func() (string, error)) Option {
	return func(s *URLService) {
		s.generate = generate
	}
}

// WithFingerprint replaces the URL fingerprint function.
func WithFingerprint(fingerprint func(string) string) Option {
	return func(s *URLService) {
		s.fingerprint = fingerprint
	}
}

// NewURLService creates a URLService with the provided repository and
// reachability verifier.
func NewURLService(repo URLRepository, verifier URLVerifier, opts ...Option) *URLService {
	s := &URLService{
		repo:        repo,
		verifier:    verifier,
		generate:    NewShortCode,
		fingerprint: Fingerprint,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ShortenURL maps the target URL to a short code and stores the mapping.
//
// The target is truncated to 2048 characters before hashing. If a record
// with the same fingerprint already exists the call is idempotent: an
// active record is returned unchanged and an inactive one is reactivated
// under its original code. Otherwise the custom code is used when given, or
// random candidates are tried until the store accepts one.
func (s *URLService) ShortenURL(ctx context.Context, targetURL, customCode string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"

	originalURL := truncateURL(targetURL)
	urlHash := s.fingerprint(originalURL)

	existing, err := s.repo.GetByHash(ctx, urlHash)
	if err == nil {
		if existing.IsActive {
			return existing, nil
		}

		url, err := s.repo.Reactivate(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to reactivate url: %w", op, err)
		}

		return url, nil
	}
	if !errors.Is(err, database.ErrURLNotFound) {
		return nil, fmt.Errorf("%s: failed to look up url hash: %w", op, err)
	}

	if customCode != "" {
		if err := s.checkCodeFree(ctx, customCode, 0); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return s.create(ctx, op, originalURL, urlHash, customCode)
	}

	for i := 0; i < maxCodeRetries; i++ {
		shortCode, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		if err := s.checkCodeFree(ctx, shortCode, 0); err != nil {
			if errors.Is(err, ErrShortCodeTaken) {
				continue
			}

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return s.create(ctx, op, originalURL, urlHash, shortCode)
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// checkCodeFree reports whether the short code is free of active holders.
// An active holder with id selfID does not count. Inactive holders are left
// in place; they are reclaimed transactionally by Create or Update.
func (s *URLService) checkCodeFree(ctx context.Context, shortCode string, selfID int64) error {
	holder, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, database.ErrURLNotFound) {
			return nil
		}

		return fmt.Errorf("failed to look up short code: %w", err)
	}

	if holder.IsActive && holder.ID != selfID {
		return ErrShortCodeTaken
	}

	return nil
}

func (s *URLService) create(ctx context.Context, op, originalURL, urlHash, shortCode string) (*models.URL, error) {
	url, err := s.repo.Create(ctx, &models.URL{
		OriginalURL: originalURL,
		URLHash:     urlHash,
		ShortCode:   shortCode,
		IsActive:    true,
	})
	if err != nil {
		// A lost race surfaces here as a uniqueness conflict and is left to
		// the caller to retry.
		return nil, fmt.Errorf("%s: failed to create url: %w", op, err)
	}

	return url, nil
}

// ResolveShortCode retrieves the original URL for a short code. The lookup
// itself is unfiltered; a record that exists but is deactivated is rejected
// afterwards, surfacing the same not-found error as an unknown code.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if !url.IsActive {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return url, nil
}

// ModifyURL applies a partial update to the record holding shortCode. A new
// target URL must pass the reachability probe before the mutating
// transaction begins, and its hash is recomputed. A short code rename is
// rejected while an active record other than the target holds the new code.
func (s *URLService) ModifyURL(ctx context.Context, shortCode string, upd URLUpdate) (*models.URL, error) {
	const op = "service.URLService.ModifyURL"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if upd.TargetURL != nil {
		originalURL := truncateURL(*upd.TargetURL)

		if !s.verifier.Verify(ctx, originalURL) {
			return nil, fmt.Errorf("%s: %w", op, ErrURLNotReachable)
		}

		url.OriginalURL = originalURL
		url.URLHash = s.fingerprint(originalURL)
	}

	if upd.ShortCode != nil && *upd.ShortCode != url.ShortCode {
		if err := s.checkCodeFree(ctx, *upd.ShortCode, url.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		url.ShortCode = *upd.ShortCode
	}

	if upd.IsActive != nil {
		url.IsActive = *upd.IsActive
	}

	updated, err := s.repo.Update(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update url: %w", op, err)
	}

	return updated, nil
}

// DeactivateURL soft-deletes the mapping for a short code. The record is
// never hard-deleted on this path; reclamation happens only when a create
// or update needs the code.
func (s *URLService) DeactivateURL(ctx context.Context, shortCode string) error {
	const op = "service.URLService.DeactivateURL"

	if err := s.repo.Deactivate(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	return nil
}

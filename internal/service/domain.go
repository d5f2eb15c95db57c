package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/investingindigital/url-shortener/internal/database"
	"github.com/investingindigital/url-shortener/internal/models"
)

// DomainRepository defines the interface for working with domain redirect
// records at the business logic layer.
type DomainRepository interface {
	// Create inserts a new domain record.
	Create(ctx context.Context, domain *models.Domain) (*models.Domain, error)

	// GetByDomain retrieves a domain record by its domain string, active or not.
	GetByDomain(ctx context.Context, domain string) (*models.Domain, error)

	// GetActiveByDomain retrieves an active domain record by its domain string.
	GetActiveByDomain(ctx context.Context, domain string) (*models.Domain, error)

	// GetByID retrieves a domain record by its identifier.
	GetByID(ctx context.Context, id int64) (*models.Domain, error)

	// ListActive returns all active domain records.
	ListActive(ctx context.Context) ([]*models.Domain, error)

	// Update rewrites the redirect target and active flag of a domain record.
	Update(ctx context.Context, domain *models.Domain) (*models.Domain, error)

	// Deactivate soft-deletes a domain record by its identifier.
	Deactivate(ctx context.Context, id int64) error
}

// DomainUpdate describes a partial update of a domain record. Nil fields
// are left unchanged.
type DomainUpdate struct {
	RedirectURL *string
	IsActive    *bool
}

// DomainService manages domain redirect records. Domains live in their own
// namespace with no interaction with URL records, and there is no
// reactivation logic: a registered domain stays reserved even while inactive.
type DomainService struct {
	repo DomainRepository
}

// NewDomainService creates a DomainService with the provided repository.
func NewDomainService(repo DomainRepository) *DomainService {
	return &DomainService{
		repo: repo,
	}
}

// CreateDomain registers a domain redirect. Creation is rejected with
// database.ErrDomainExists while any record, active or not, holds the
// domain string.
func (s *DomainService) CreateDomain(ctx context.Context, domain, redirectURL string) (*models.Domain, error) {
	const op = "service.DomainService.CreateDomain"

	_, err := s.repo.GetByDomain(ctx, domain)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, database.ErrDomainExists)
	}
	if !errors.Is(err, database.ErrDomainNotFound) {
		return nil, fmt.Errorf("%s: failed to look up domain: %w", op, err)
	}

	created, err := s.repo.Create(ctx, &models.Domain{
		Domain:      domain,
		RedirectURL: redirectURL,
		IsActive:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create domain: %w", op, err)
	}

	return created, nil
}

// ListDomains returns all active domain redirects.
func (s *DomainService) ListDomains(ctx context.Context) ([]*models.Domain, error) {
	const op = "service.DomainService.ListDomains"

	domains, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list domains: %w", op, err)
	}

	return domains, nil
}

// ModifyDomain applies a partial update to a domain record.
func (s *DomainService) ModifyDomain(ctx context.Context, id int64, upd DomainUpdate) (*models.Domain, error) {
	const op = "service.DomainService.ModifyDomain"

	domain, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get domain: %w", op, err)
	}

	if upd.RedirectURL != nil {
		domain.RedirectURL = *upd.RedirectURL
	}
	if upd.IsActive != nil {
		domain.IsActive = *upd.IsActive
	}

	updated, err := s.repo.Update(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update domain: %w", op, err)
	}

	return updated, nil
}

// DeactivateDomain soft-deletes a domain redirect, keeping the domain
// string reserved.
func (s *DomainService) DeactivateDomain(ctx context.Context, id int64) error {
	const op = "service.DomainService.DeactivateDomain"

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to deactivate domain: %w", op, err)
	}

	return nil
}

// ResolveHost maps a request Host header value to an active domain
// redirect. Any port suffix is stripped before the exact match.
func (s *DomainService) ResolveHost(ctx context.Context, host string) (*models.Domain, error) {
	const op = "service.DomainService.ResolveHost"

	domain, err := s.repo.GetActiveByDomain(ctx, StripPort(host))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve host: %w", op, err)
	}

	return domain, nil
}

// StripPort removes a :port suffix from a Host header value.
func StripPort(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}

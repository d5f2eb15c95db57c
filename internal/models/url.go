package models

import "time"

// URL represents a shortened URL mapping and its associated metadata.
type URL struct {
	// ID is the unique identifier for the URL record.
	ID int64
	// OriginalURL is the full-length URL that the short code points to.
	// It is stored truncated to 2048 characters.
	OriginalURL string
	// URLHash is a deterministic 10-digit fingerprint of OriginalURL,
	// used to deduplicate mappings.
	URLHash string
	// ShortCode is the 6-character code associated with the original URL.
	ShortCode string
	// CreatedAt is the timestamp indicating when the record was created.
	CreatedAt time.Time
	// IsActive reports whether the mapping is live. Deleted mappings are
	// kept with IsActive set to false until their code is reclaimed.
	IsActive bool
}

// Domain represents a registered custom domain and its redirect target.
type Domain struct {
	// ID is the unique identifier for the domain record.
	ID int64
	// Domain is the hostname matched against the request Host header.
	Domain string
	// RedirectURL is the target the domain redirects to.
	RedirectURL string
	// CreatedAt is the timestamp indicating when the record was created.
	CreatedAt time.Time
	// IsActive reports whether the redirect is live.
	IsActive bool
}

package service

import (
	"crypto/md5" //nolint:gosec // fingerprint for dedup, not security
	"encoding/binary"
	"fmt"
)

// maxURLLength is the storage limit for original URLs, counted in
// characters. Longer URLs are silently truncated before hashing, so the
// fingerprint always matches the stored value.
const maxURLLength = 2048

// Fingerprint returns a deterministic 10-digit decimal fingerprint of the
// URL string. The leading four bytes of the MD5 digest are rendered as a
// zero-padded decimal. Collisions are possible and are handled as ordinary
// uniqueness conflicts by the storage layer.
func Fingerprint(url string) string {
	sum := md5.Sum([]byte(url)) //nolint:gosec
	return fmt.Sprintf("%010d", binary.BigEndian.Uint32(sum[:4]))
}

// truncateURL cuts at maxURLLength characters, not bytes. A byte-level cut
// could split a multibyte rune and yield a string Postgres rejects as
// invalid UTF-8.
func truncateURL(url string) string {
	if len(url) <= maxURLLength {
		return url
	}

	runes := []rune(url)
	if len(runes) <= maxURLLength {
		return url
	}

	return string(runes[:maxURLLength])
}

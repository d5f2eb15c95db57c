package service

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// shortCodeLength is the fixed length of every generated short code.
const shortCodeLength = 6

// shortCodeAlphabet contains upper and lower case Latin letters only.
// Digits are excluded from generated codes, though custom codes may use them.
const shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewShortCode returns a random 6-letter candidate code. Candidates are not
// guaranteed unique; the caller retries until the storage layer accepts one.
func NewShortCode() (string, error) {
	return gonanoid.Generate(shortCodeAlphabet, shortCodeLength)
}

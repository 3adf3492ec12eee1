package models

import (
	"fmt"
	"strings"
)

// KeyPrefix represents the type of rate limit key.
type KeyPrefix string

const (
	KeyPrefixAccount KeyPrefix = "account"
	KeyPrefixIP      KeyPrefix = "ip"
)

// RateLimitKey is a value object encapsulating rate limit bucket key construction.
// It centralizes key format and sanitization to prevent key collision attacks.
type RateLimitKey struct {
	prefix     KeyPrefix
	identifier string
	descriptor Descriptor
}

// NewRateLimitKey creates a rate limit key for one identifier under one descriptor.
func NewRateLimitKey(prefix KeyPrefix, identifier string, descriptor Descriptor) RateLimitKey {
	return RateLimitKey{
		prefix:     prefix,
		identifier: sanitizeKeySegment(identifier),
		descriptor: descriptor,
	}
}

// NewAccountKey is the key used for per-account descriptors.
func NewAccountKey(accountID string, descriptor Descriptor) RateLimitKey {
	return NewRateLimitKey(KeyPrefixAccount, accountID, descriptor)
}

// String returns the formatted key for storage lookup.
func (k RateLimitKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.prefix, k.identifier, k.descriptor)
}

// sanitizeKeySegment escapes delimiter characters in rate limit key segments
// so that caller-supplied identifiers containing ':' cannot land in another bucket.
//
// Escape rules (order matters):
//  1. Escape '_' to '__' (escape the escape character first)
//  2. Escape ':' to '_c' (escape the delimiter)
//
// Examples:
//   - "user:admin"  → "user_cadmin"
//   - "user_admin"  → "user__admin"
//   - "user_:admin" → "user___cadmin"
func sanitizeKeySegment(s string) string {
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, ":", "_c")
	return s
}

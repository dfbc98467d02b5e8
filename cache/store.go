package cache

import (
	"context"
	"strings"
	"time"
)

// Key categories. Unrelated data must never share a namespace.
const (
	CategoryChecklist = "checklist"
	CategoryQuote     = "quote"
	CategoryLogo      = "logo"
)

// NoExpiry disables automatic expiry, used for content-addressed data such as
// company logos that never change once fetched.
const NoExpiry time.Duration = 0

// Store is the read-through cache contract. Reads degrade to a miss on any
// backend failure; writes are best effort and must never fail a request.
type Store interface {
	// Get unmarshals the value at key into dest and reports whether a usable
	// value was found. A backend error is indistinguishable from a miss.
	Get(ctx context.Context, key string, dest interface{}) bool

	// Set stores value under key. ttl == NoExpiry keeps the value until
	// explicitly overwritten.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// Key builds a namespaced cache key from a category and an identifier. Pure
// function, shared by every component that touches the cache.
func Key(category, identifier string) string {
	return category + ":" + strings.ToUpper(identifier)
}

// Package cache provides layered (memory + disk) caching for collector
// fetches, so re-polled queries and re-visited pages do not hammer the
// search endpoint or source sites.
package cache

import (
	"time"

	"github.com/ppetrenko/veridex/internal/ident"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a URL or query string
func Key(input string) string {
	return "veridex:v1:" + ident.MakeHash(input)
}

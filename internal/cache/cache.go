// Package cache stores encoded reports so repeated requests for the same
// image and seed skip the pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store is a byte-oriented key/value cache with per-entry expiry.
type Store interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value; a non-positive ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// ReportKey identifies the report for an image reference under a seed.
func ReportKey(imageURL string, seed int64) string {
	sum := sha256.Sum256([]byte(imageURL))
	return fmt.Sprintf("report:%d:%s", seed, hex.EncodeToString(sum[:]))
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// DefaultMaxImageBytes caps a single download when no limit is configured.
const DefaultMaxImageBytes int64 = 25 * 1024 * 1024

// RawImage is the undecoded payload behind an image reference.
type RawImage struct {
	Data        []byte
	ContentType string
	Source      string
}

// ImageFetcher retrieves the raw bytes behind an image reference. Fetchers
// make exactly one attempt; failures are reported as fetch or timeout errors.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) (*RawImage, error)
}

// readCapped reads at most limit bytes and fails if more are available.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image exceeds %d bytes", limit)
	}
	return data, nil
}

// fetchFailure classifies a transport error, preferring the context state.
func fetchFailure(ctx context.Context, message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("image fetch timed out", err)
	}
	return apperrors.NewFetchError(message, err)
}

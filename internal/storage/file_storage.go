package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"

	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// FileImageFetcher reads images from the local filesystem. References are
// file:// URLs or plain paths.
type FileImageFetcher struct {
	maxBytes int64
}

func NewFileImageFetcher(maxBytes int64) *FileImageFetcher {
	return &FileImageFetcher{maxBytes: maxBytes}
}

func (f *FileImageFetcher) Fetch(ctx context.Context, ref string) (*RawImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchFailure(ctx, "fetch cancelled", err)
	}

	path, err := filePath(ref)
	if err != nil {
		return nil, apperrors.NewFetchError("invalid file reference", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewFetchError("failed to open image", err)
	}
	defer file.Close()

	data, err := readCapped(file, f.maxBytes)
	if err != nil {
		return nil, apperrors.NewFetchError("failed to read image", err)
	}
	return &RawImage{Data: data, Source: ref}, nil
}

func filePath(ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Scheme == "" {
		return ref, nil
	}
	if parsed.Scheme != "file" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Path == "" {
		return "", fmt.Errorf("file URL has no path")
	}
	return parsed.Path, nil
}

package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// HTTPImageFetcher downloads images over http and https.
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPImageFetcher creates an HTTP image fetcher whose responses are
// capped at maxBytes.
func NewHTTPImageFetcher(maxBytes int64) *HTTPImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

// Fetch performs a single GET. Any status other than 200 is a fetch error.
func (h *HTTPImageFetcher) Fetch(ctx context.Context, imageURL string) (*RawImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, apperrors.NewFetchError("invalid image URL", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Folkart-Inspector/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fetchFailure(ctx, "failed to fetch image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewFetchError("failed to fetch image",
			fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	data, err := readCapped(resp.Body, h.maxBytes)
	if err != nil {
		return nil, fetchFailure(ctx, "failed to read image body", err)
	}

	return &RawImage{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Source:      imageURL,
	}, nil
}

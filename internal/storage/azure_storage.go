package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// AzureImageFetcher downloads blobs from a single storage account.
type AzureImageFetcher struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureImageFetcher authenticates against the account with a shared key.
func NewAzureImageFetcher(accountName, accountKey string, maxBytes int64) (*AzureImageFetcher, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("azure account name and key are required")
	}
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &AzureImageFetcher{client: client, maxBytes: maxBytes}, nil
}

// Fetch downloads https://<account>.blob.core.windows.net/<container>/<blob>.
func (s *AzureImageFetcher) Fetch(ctx context.Context, blobURL string) (*RawImage, error) {
	containerName, blobName, err := parseBlobURL(blobURL)
	if err != nil {
		return nil, apperrors.NewFetchError("invalid blob URL", err)
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fetchFailure(ctx, "blob download failed", err)
	}
	body := resp.Body
	defer body.Close()

	data, err := readCapped(body, s.maxBytes)
	if err != nil {
		return nil, fetchFailure(ctx, "failed to read blob", err)
	}

	raw := &RawImage{Data: data, Source: blobURL}
	if resp.ContentType != nil {
		raw.ContentType = *resp.ContentType
	}
	return raw, nil
}

// parseBlobURL splits the path of a blob URL into container and blob name.
// Blob names may contain slashes.
func parseBlobURL(blobURL string) (string, string, error) {
	parsed, err := url.Parse(blobURL)
	if err != nil {
		return "", "", err
	}
	if parsed.Host == "" {
		return "", "", fmt.Errorf("blob URL must include the account host")
	}

	containerName, blobName, ok := strings.Cut(strings.TrimPrefix(parsed.Path, "/"), "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("blob URL must be /<container>/<blob>, got %q", parsed.Path)
	}
	return containerName, blobName, nil
}

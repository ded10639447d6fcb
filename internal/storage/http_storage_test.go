package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// Valid minimal PNG data for 1x1 transparent pixel
var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func TestHTTPImageFetcher_SingleAttempt(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectError bool
	}{
		{name: "Success", status: http.StatusOK},
		{name: "Not found", status: http.StatusNotFound, expectError: true},
		{name: "Server error is not retried", status: http.StatusInternalServerError, expectError: true},
		{name: "No content", status: http.StatusNoContent, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestCount int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&requestCount, 1)
				if tt.status == http.StatusOK {
					w.Header().Set("Content-Type", "image/png")
					w.Write(pngData)
					return
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			raw, err := NewHTTPImageFetcher(DefaultMaxImageBytes).Fetch(context.Background(), server.URL)

			if n := atomic.LoadInt32(&requestCount); n != 1 {
				t.Errorf("Expected exactly 1 request, got %d", n)
			}
			if tt.expectError {
				if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
					t.Errorf("Expected fetch error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if string(raw.Data) != string(pngData) || raw.ContentType != "image/png" || raw.Source != server.URL {
				t.Errorf("Unexpected payload: %d bytes, %q, %q", len(raw.Data), raw.ContentType, raw.Source)
			}
		})
	}
}

func TestHTTPImageFetcher_BodyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 101)))
	}))
	defer server.Close()

	_, err := NewHTTPImageFetcher(100).Fetch(context.Background(), server.URL)
	if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Fatalf("Expected fetch error for oversized body, got %v", err)
	}

	raw, err := NewHTTPImageFetcher(101).Fetch(context.Background(), server.URL)
	if err != nil || len(raw.Data) != 101 {
		t.Errorf("Expected body at the limit to be accepted, got %v", err)
	}
}

func TestHTTPImageFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPImageFetcher(DefaultMaxImageBytes).Fetch(ctx, server.URL)
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestHTTPImageFetcher_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPImageFetcher(DefaultMaxImageBytes).Fetch(context.Background(), url)
	if !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Errorf("Expected fetch error, got %v", err)
	}
}

func TestParseBlobURL(t *testing.T) {
	tests := []struct {
		url         string
		container   string
		blob        string
		expectError bool
	}{
		{url: "https://acct.blob.core.windows.net/art/warli.jpg", container: "art", blob: "warli.jpg"},
		{url: "https://acct.blob.core.windows.net/art/2024/village/warli.png", container: "art", blob: "2024/village/warli.png"},
		{url: "https://acct.blob.core.windows.net/art", expectError: true},
		{url: "https://acct.blob.core.windows.net/art/", expectError: true},
		{url: "/art/warli.jpg", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			container, blob, err := parseBlobURL(tt.url)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, got %s/%s", container, blob)
				}
				return
			}
			if err != nil || container != tt.container || blob != tt.blob {
				t.Errorf("Expected %s/%s, got %s/%s (%v)", tt.container, tt.blob, container, blob, err)
			}
		})
	}
}

func TestFileImageFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pixel.png")
	if err := os.WriteFile(path, pngData, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	fetcher := NewFileImageFetcher(DefaultMaxImageBytes)
	for _, ref := range []string{path, "file://" + path} {
		raw, err := fetcher.Fetch(context.Background(), ref)
		if err != nil {
			t.Fatalf("Fetch(%q) failed: %v", ref, err)
		}
		if len(raw.Data) != len(pngData) {
			t.Errorf("Expected %d bytes, got %d", len(pngData), len(raw.Data))
		}
	}

	if _, err := fetcher.Fetch(context.Background(), filepath.Join(dir, "missing.png")); !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Errorf("Expected fetch error for missing file, got %v", err)
	}
	if _, err := fetcher.Fetch(context.Background(), "http://example.com/a.png"); !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Errorf("Expected fetch error for foreign scheme, got %v", err)
	}
	if _, err := NewFileImageFetcher(10).Fetch(context.Background(), path); !apperrors.IsType(err, apperrors.ErrorTypeFetch) {
		t.Errorf("Expected fetch error for oversized file, got %v", err)
	}
}

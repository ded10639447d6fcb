package factory

import (
	"context"
	"testing"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
	"github.com/anime-shed/folkart-inspector/internal/cache"
	"github.com/anime-shed/folkart-inspector/internal/storage"
)

func TestCreateStorage(t *testing.T) {
	f := NewStorageFactory(1024, "", "")

	tests := []struct {
		storageType StorageType
		wantErr     bool
	}{
		{HTTPStorage, false},
		{FileStorage, false},
		{AzureStorage, true},
		{StorageType("ftp"), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.storageType), func(t *testing.T) {
			fetcher, err := f.CreateStorage(tt.storageType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateStorage(%s) error = %v, wantErr %v", tt.storageType, err, tt.wantErr)
			}
			if !tt.wantErr && fetcher == nil {
				t.Error("Expected a fetcher")
			}
		})
	}

	if _, ok := mustStorage(t, f, HTTPStorage).(*storage.HTTPImageFetcher); !ok {
		t.Error("Expected HTTP fetcher")
	}
	if _, ok := mustStorage(t, f, FileStorage).(*storage.FileImageFetcher); !ok {
		t.Error("Expected file fetcher")
	}
}

func mustStorage(t *testing.T, f StorageFactory, st StorageType) storage.ImageFetcher {
	t.Helper()
	fetcher, err := f.CreateStorage(st)
	if err != nil {
		t.Fatalf("CreateStorage(%s): %v", st, err)
	}
	return fetcher
}

func TestCreateAnalyzer(t *testing.T) {
	f := NewAnalyzerFactory(analyzer.DefaultOptions())

	if a, err := f.CreateAnalyzer("go"); err != nil || a == nil {
		t.Errorf("Expected go analyzer, got %v, %v", a, err)
	}
	if _, err := f.CreateAnalyzer("opencl"); err == nil {
		t.Error("Expected error for unknown backend")
	}

	bad := NewAnalyzerFactory(analyzer.DefaultOptions().WithPaletteColors(0))
	if _, err := bad.CreateAnalyzer("go"); err == nil {
		t.Error("Expected invalid options to be rejected")
	}
}

func TestCreateCache(t *testing.T) {
	tests := []struct {
		backend   string
		redisAddr string
		wantNil   bool
		wantErr   bool
	}{
		{cache.BackendNone, "", true, false},
		{"", "", true, false},
		{cache.BackendMemory, "", false, false},
		{cache.BackendRedis, "localhost:6379", false, false},
		{cache.BackendRedis, "", true, true},
		{"memcached", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend+"/"+tt.redisAddr, func(t *testing.T) {
			store, err := NewCacheFactory(16, tt.redisAddr, 2).CreateCache(tt.backend)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateCache(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if (store == nil) != tt.wantNil {
				t.Errorf("CreateCache(%q) store = %v", tt.backend, store)
			}
			if store != nil {
				store.Close()
			}
		})
	}
}

func TestCreateCache_MemoryCapacity(t *testing.T) {
	store, err := NewCacheFactory(2, "", 0).CreateCache(cache.BackendMemory)
	if err != nil {
		t.Fatalf("CreateCache failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		store.Set(ctx, key, []byte(key), 0)
	}
	if n := store.(*cache.MemoryStore).Len(); n != 2 {
		t.Errorf("Expected capacity 2 to be applied, have %d entries", n)
	}
}

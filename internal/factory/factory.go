package factory

import (
	"fmt"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
	"github.com/anime-shed/folkart-inspector/internal/cache"
	"github.com/anime-shed/folkart-inspector/internal/config"
	"github.com/anime-shed/folkart-inspector/internal/storage"
	"github.com/anime-shed/folkart-inspector/internal/vision"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// FileStorage for the local file system
	FileStorage StorageType = "file"
)

// AnalyzerFactory creates feature analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(backend string) (analyzer.FeatureAnalyzer, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// CacheFactory creates report caches. A nil store means caching is off.
type CacheFactory interface {
	CreateCache(backend string) (cache.Store, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	options analyzer.AnalysisOptions
}

// NewAnalyzerFactory creates analyzers that share options
func NewAnalyzerFactory(options analyzer.AnalysisOptions) AnalyzerFactory {
	return &analyzerFactory{options: options}
}

// CreateAnalyzer creates an analyzer on the named vision backend
func (f *analyzerFactory) CreateAnalyzer(backend string) (analyzer.FeatureAnalyzer, error) {
	b, err := vision.NewBackend(backend)
	if err != nil {
		return nil, err
	}
	return analyzer.NewFeatureAnalyzer(b, f.options)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	maxImageBytes    int64
	azureAccountName string
	azureAccountKey  string
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(maxImageBytes int64, azureAccountName, azureAccountKey string) StorageFactory {
	return &storageFactory{
		maxImageBytes:    maxImageBytes,
		azureAccountName: azureAccountName,
		azureAccountKey:  azureAccountKey,
	}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.maxImageBytes), nil
	case AzureStorage:
		return storage.NewAzureImageFetcher(f.azureAccountName, f.azureAccountKey, f.maxImageBytes)
	case FileStorage:
		return storage.NewFileImageFetcher(f.maxImageBytes), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// cacheFactory implements CacheFactory
type cacheFactory struct {
	memoryEntries int
	redisAddr     string
	redisMaxIdle  int
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(memoryEntries int, redisAddr string, redisMaxIdle int) CacheFactory {
	return &cacheFactory{
		memoryEntries: memoryEntries,
		redisAddr:     redisAddr,
		redisMaxIdle:  redisMaxIdle,
	}
}

func (f *cacheFactory) CreateCache(backend string) (cache.Store, error) {
	switch backend {
	case cache.BackendNone, "":
		return nil, nil
	case cache.BackendMemory:
		return cache.NewMemoryStore(f.memoryEntries), nil
	case cache.BackendRedis:
		if f.redisAddr == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		return cache.NewRedisStore(f.redisAddr, f.redisMaxIdle), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", backend)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
	CacheFactory    CacheFactory
}

// NewComponentFactory creates factories configured from cfg
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(analyzer.DefaultOptions().WithSeed(cfg.KMeansSeed)),
		StorageFactory:  NewStorageFactory(cfg.MaxImageBytes, cfg.AzureAccountName, cfg.AzureAccountKey),
		CacheFactory:    NewCacheFactory(cfg.MemoryCacheEntries, cfg.RedisAddr, cfg.RedisMaxIdle),
	}
}

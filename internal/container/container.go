package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
	"github.com/anime-shed/folkart-inspector/internal/cache"
	"github.com/anime-shed/folkart-inspector/internal/classify"
	"github.com/anime-shed/folkart-inspector/internal/config"
	"github.com/anime-shed/folkart-inspector/internal/factory"
	"github.com/anime-shed/folkart-inspector/internal/logger"
	"github.com/anime-shed/folkart-inspector/internal/observer"
	"github.com/anime-shed/folkart-inspector/internal/repository"
	"github.com/anime-shed/folkart-inspector/internal/service"
	"github.com/anime-shed/folkart-inspector/internal/storage"
	"github.com/anime-shed/folkart-inspector/internal/transport"
	"github.com/anime-shed/folkart-inspector/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageFetcher    storage.ImageFetcher
	featureAnalyzer analyzer.FeatureAnalyzer
	imageRepository repository.ImageRepository
	analysisService service.AnalysisService
	handler         http.Handler
}

// NewContainer builds the dependency graph from cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	imageFetcher, err := components.StorageFactory.CreateStorage(factory.StorageType(cfg.StorageBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create image storage: %w", err)
	}

	featureAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer(cfg.VisionBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to create feature analyzer: %w", err)
	}

	reportCache, err := components.CacheFactory.CreateCache(cfg.CacheBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}

	var analyses repository.AnalysisRepository
	if cfg.HistoryDBPath != "" {
		store, err := repository.NewSQLiteAnalysisRepository(cfg.HistoryDBPath)
		if err != nil {
			closeCache(reportCache)
			return nil, fmt.Errorf("failed to open analysis history: %w", err)
		}
		analyses = store
	}

	validator := validation.NewURLValidatorWithOptions(cfg.AllowedURLSchemes, nil)
	imageRepository := repository.NewImageRepository(imageFetcher, validator, cfg.MaxImagePixels)

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))

	analysisService, err := service.NewAnalysisService(service.Dependencies{
		Images:     imageRepository,
		Features:   featureAnalyzer,
		Classifier: classify.NewClassifier(),
		Analyses:   analyses,
		Cache:      reportCache,
		Events:     events,
		Metrics:    observer.NewMetricsObserver(),
	}, service.Settings{
		Seed:            cfg.KMeansSeed,
		FetchTimeout:    cfg.ImageFetchTimeout,
		AnalysisTimeout: cfg.AnalysisTimeout,
		CacheTTL:        cfg.CacheTTL,
		MaxBatchSize:    cfg.MaxBatchSize,
		BatchWorkers:    cfg.BatchWorkers,
	})
	if err != nil {
		closeCache(reportCache)
		if analyses != nil {
			analyses.Close()
		}
		return nil, fmt.Errorf("failed to create analysis service: %w", err)
	}

	handler := transport.NewHandler(analysisService, cfg)

	return &Container{
		config:          cfg,
		imageFetcher:    imageFetcher,
		featureAnalyzer: featureAnalyzer,
		imageRepository: imageRepository,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

func closeCache(store cache.Store) {
	if store != nil {
		store.Close()
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the analysis service
func (c *Container) Service() service.AnalysisService {
	return c.analysisService
}

// Close releases the history database, cache connections and workers
func (c *Container) Close() error {
	return c.analysisService.Close()
}

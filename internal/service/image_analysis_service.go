package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
	"github.com/anime-shed/folkart-inspector/internal/cache"
	"github.com/anime-shed/folkart-inspector/internal/classify"
	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
	"github.com/anime-shed/folkart-inspector/internal/logger"
	"github.com/anime-shed/folkart-inspector/internal/observer"
	"github.com/anime-shed/folkart-inspector/internal/repository"
	"github.com/anime-shed/folkart-inspector/pkg/models"
)

// AnalysisService runs the folk-art pipeline for image references
type AnalysisService interface {
	// Analyze returns the report for one image
	Analyze(ctx context.Context, imageURL string) (*classify.Report, error)

	// AnalyzeWithDetails also reports how the result was obtained
	AnalyzeWithDetails(ctx context.Context, imageURL string) (*AnalysisResult, error)

	// AnalyzeBatch analyzes up to MaxBatchSize images; results keep request order
	AnalyzeBatch(ctx context.Context, imageURLs []string) ([]models.BatchResult, error)

	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	GetAnalysisHistory(ctx context.Context, imageURL string, limit int) ([]*models.AnalysisRecord, error)

	ValidateImageURL(imageURL string) error
	Metrics() models.AnalysisMetrics
	Close() error
}

// AnalysisResult is a report plus bookkeeping about the run that produced it.
// AnalysisID is empty when history is disabled or the report came from the
// cache.
type AnalysisResult struct {
	Report         *classify.Report
	AnalysisID     string
	Provenance     models.Provenance
	Cached         bool
	ProcessingTime time.Duration
}

// Settings tunes the service
type Settings struct {
	Seed            int64
	FetchTimeout    time.Duration
	AnalysisTimeout time.Duration
	CacheTTL        time.Duration
	MaxBatchSize    int
	BatchWorkers    int
}

// DefaultSettings mirrors the configuration defaults
func DefaultSettings() Settings {
	return Settings{
		Seed:            42,
		FetchTimeout:    15 * time.Second,
		AnalysisTimeout: 20 * time.Second,
		CacheTTL:        10 * time.Minute,
		MaxBatchSize:    20,
	}
}

// Dependencies are the collaborators of the service. Analyses, Cache,
// Events and Metrics are optional.
type Dependencies struct {
	Images     repository.ImageRepository
	Features   analyzer.FeatureAnalyzer
	Classifier *classify.Classifier
	Analyses   repository.AnalysisRepository
	Cache      cache.Store
	Events     observer.Subject
	Metrics    *observer.MetricsObserver
}

var log = logger.Component("service")

type analysisService struct {
	images     repository.ImageRepository
	features   analyzer.FeatureAnalyzer
	classifier *classify.Classifier
	analyses   repository.AnalysisRepository
	cache      cache.Store
	events     observer.Subject
	metrics    *observer.MetricsObserver
	pool       *analyzer.WorkerPool
	settings   Settings
	closeOnce  sync.Once
}

// NewAnalysisService wires the pipeline. The metrics observer, when given,
// is subscribed to the event publisher.
func NewAnalysisService(deps Dependencies, settings Settings) (AnalysisService, error) {
	if deps.Images == nil || deps.Features == nil || deps.Classifier == nil {
		return nil, fmt.Errorf("image repository, feature analyzer and classifier are required")
	}
	if settings.FetchTimeout <= 0 || settings.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0")
	}
	if settings.MaxBatchSize <= 0 {
		settings.MaxBatchSize = DefaultSettings().MaxBatchSize
	}

	events := deps.Events
	if events == nil {
		events = observer.NewEventPublisher()
	}
	if deps.Metrics != nil {
		events.Subscribe(deps.Metrics)
	}

	pool := analyzer.NewWorkerPool(settings.BatchWorkers)
	pool.Start()

	return &analysisService{
		images:     deps.Images,
		features:   deps.Features,
		classifier: deps.Classifier,
		analyses:   deps.Analyses,
		cache:      deps.Cache,
		events:     events,
		metrics:    deps.Metrics,
		pool:       pool,
		settings:   settings,
	}, nil
}

func (s *analysisService) Analyze(ctx context.Context, imageURL string) (*classify.Report, error) {
	result, err := s.AnalyzeWithDetails(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return result.Report, nil
}

func (s *analysisService) AnalyzeWithDetails(ctx context.Context, imageURL string) (*AnalysisResult, error) {
	if err := s.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	start := time.Now()
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, ImageURL: imageURL})

	result, err := s.run(ctx, imageURL, start)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			ImageURL:       imageURL,
			ProcessingTime: time.Since(start),
			ErrorType:      string(apperrors.GetType(err)),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		ImageURL:       imageURL,
		ProcessingTime: result.ProcessingTime,
		Success:        true,
		ArtForm:        result.Report.ArtForm(),
		Metadata:       map[string]interface{}{"cached": result.Cached},
	})
	return result, nil
}

// run executes load, extraction and classification, checking for
// cancellation between phases.
func (s *analysisService) run(ctx context.Context, imageURL string, start time.Time) (*AnalysisResult, error) {
	cacheKey := cache.ReportKey(imageURL, s.settings.Seed)
	if report := s.cachedReport(ctx, cacheKey); report != nil {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{EventType: observer.CacheHit, ImageURL: imageURL})
		return &AnalysisResult{Report: report, Cached: true, ProcessingTime: time.Since(start)}, nil
	}

	fetchCtx, cancelFetch := context.WithTimeout(ctx, s.settings.FetchTimeout)
	loaded, err := s.images.LoadImage(fetchCtx, imageURL)
	cancelFetch()
	if err != nil {
		err = contextError(err, "image fetch timed out")
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType:    observer.ImageFetchFailed,
			ImageURL:     imageURL,
			ErrorType:    string(apperrors.GetType(err)),
			ErrorMessage: err.Error(),
		})
		return nil, err
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType: observer.ImageFetched,
		ImageURL:  imageURL,
		Success:   true,
		Metadata: map[string]interface{}{
			"width":  loaded.Provenance.Width,
			"height": loaded.Provenance.Height,
			"format": loaded.Provenance.Format,
		},
	})

	if err := ctx.Err(); err != nil {
		return nil, contextError(err, "analysis cancelled before feature extraction")
	}

	analysisCtx, cancelAnalysis := context.WithTimeout(ctx, s.settings.AnalysisTimeout)
	features, err := s.features.Extract(analysisCtx, loaded.Asset)
	cancelAnalysis()
	if err != nil {
		return nil, contextError(err, "feature extraction timed out")
	}

	if err := ctx.Err(); err != nil {
		return nil, contextError(err, "analysis cancelled before classification")
	}

	report, err := s.classifier.Classify(loaded.Asset, features)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	encoded, err := json.Marshal(report)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode report", err)
	}

	result := &AnalysisResult{
		Report:         report,
		Provenance:     loaded.Provenance,
		ProcessingTime: elapsed,
	}
	s.storeReport(ctx, cacheKey, encoded)
	result.AnalysisID = s.persist(ctx, imageURL, report, encoded, loaded.Provenance, elapsed)
	return result, nil
}

func (s *analysisService) cachedReport(ctx context.Context, key string) *classify.Report {
	if s.cache == nil {
		return nil
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("cache_key", key).Warn("Report cache lookup failed")
		return nil
	}
	if !ok {
		return nil
	}
	report := classify.NewReport()
	if err := json.Unmarshal(data, report); err != nil {
		log.WithError(err).WithField("cache_key", key).Warn("Discarding unreadable cached report")
		return nil
	}
	return report
}

func (s *analysisService) storeReport(ctx context.Context, key string, encoded []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, encoded, s.settings.CacheTTL); err != nil {
		log.WithError(err).WithField("cache_key", key).Warn("Failed to cache report")
	}
}

// persist stores the analysis and returns its ID, or "" if history is
// disabled or the write failed. A failed write never fails the request.
func (s *analysisService) persist(ctx context.Context, imageURL string, report *classify.Report, encoded []byte,
	provenance models.Provenance, elapsed time.Duration) string {
	if s.analyses == nil {
		return ""
	}
	record := &models.AnalysisRecord{
		ImageURL:         imageURL,
		ProcessingTimeMs: elapsed.Milliseconds(),
		Seed:             s.settings.Seed,
		ArtForm:          report.ArtForm(),
		Confidence:       report.Confidence(),
		Provenance:       provenance,
		Report:           json.RawMessage(encoded),
	}
	if err := s.analyses.SaveAnalysisResult(ctx, record); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"image_url": imageURL,
			"art_form":  record.ArtForm,
		}).Warn("Failed to persist analysis")
		return ""
	}
	return record.ID
}

func (s *analysisService) AnalyzeBatch(ctx context.Context, imageURLs []string) ([]models.BatchResult, error) {
	if len(imageURLs) == 0 {
		return nil, apperrors.NewValidationError("batch must contain at least one image URL", nil)
	}
	if len(imageURLs) > s.settings.MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("batch exceeds %d image URLs", s.settings.MaxBatchSize), nil)
	}

	results := make([]models.BatchResult, len(imageURLs))
	var wg sync.WaitGroup
	for i, imageURL := range imageURLs {
		i, imageURL := i, imageURL
		// overwritten by the job unless it panics
		results[i] = models.BatchResult{
			ImageURL: imageURL,
			Error:    NewErrorResponse(apperrors.NewInternalError("analysis did not complete", nil)),
		}

		wg.Add(1)
		submitted := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.batchItem(ctx, imageURL)
		})
		if !submitted {
			wg.Done()
			results[i].Error = NewErrorResponse(apperrors.NewInternalError("service is shutting down", nil))
		}
	}
	wg.Wait()
	return results, nil
}

func (s *analysisService) batchItem(ctx context.Context, imageURL string) models.BatchResult {
	item := models.BatchResult{ImageURL: imageURL}

	report, err := s.Analyze(ctx, imageURL)
	if err != nil {
		item.Error = NewErrorResponse(err)
		return item
	}
	encoded, err := json.Marshal(report)
	if err != nil {
		item.Error = NewErrorResponse(apperrors.NewInternalError("failed to encode report", err))
		return item
	}
	item.Report = encoded
	return item
}

func (s *analysisService) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	if s.analyses == nil {
		return nil, apperrors.NewNotFoundError("analysis history is disabled", repository.ErrHistoryDisabled)
	}
	record, err := s.analyses.GetAnalysisResult(ctx, id)
	if errors.Is(err, repository.ErrAnalysisNotFound) {
		return nil, apperrors.NewNotFoundError("analysis not found", err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load analysis", err)
	}
	return record, nil
}

func (s *analysisService) GetAnalysisHistory(ctx context.Context, imageURL string, limit int) ([]*models.AnalysisRecord, error) {
	if imageURL == "" {
		return nil, apperrors.NewValidationError("imageUrl is required", nil)
	}
	if s.analyses == nil {
		return nil, apperrors.NewNotFoundError("analysis history is disabled", repository.ErrHistoryDisabled)
	}
	records, err := s.analyses.GetAnalysisHistory(ctx, imageURL, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load analysis history", err)
	}
	return records, nil
}

func (s *analysisService) ValidateImageURL(imageURL string) error {
	return s.images.ValidateImageURL(imageURL)
}

func (s *analysisService) Metrics() models.AnalysisMetrics {
	metrics := models.AnalysisMetrics{ArtForms: map[string]int64{}, Failures: map[string]int64{}}
	if s.metrics != nil {
		metrics = s.metrics.GetMetrics()
	}

	stats := s.pool.GetStats()
	metrics.BatchPool = &models.BatchPoolStats{
		Workers:       stats.Workers,
		ActiveWorkers: stats.ActiveWorkers,
		TotalJobs:     stats.TotalJobs,
		CompletedJobs: stats.CompletedJobs,
		FailedJobs:    stats.FailedJobs,
	}
	return metrics
}

// Close drains the batch pool and releases storage. It is safe to call more
// than once.
func (s *analysisService) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		s.pool.Close()
		if s.analyses != nil {
			if err := s.analyses.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close analysis repository: %w", err))
			}
		}
		if s.cache != nil {
			if err := s.cache.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close cache: %w", err))
			}
		}
	})
	return errors.Join(errs...)
}

// contextError maps deadline expiry to a timeout error and other context
// failures to internal errors. Application errors pass through unchanged.
func contextError(err error, message string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(message, err)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.NewInternalError("analysis cancelled", err)
	}
	return apperrors.NewInternalError("analysis failed", err)
}

// NewErrorResponse renders err as the public error document
func NewErrorResponse(err error) *models.ErrorResponse {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &models.ErrorResponse{
			Error:   http.StatusText(appErr.StatusCode),
			Message: appErr.Message,
			Type:    string(appErr.Type),
		}
	}
	return &models.ErrorResponse{
		Error:   http.StatusText(http.StatusInternalServerError),
		Message: err.Error(),
		Type:    string(apperrors.ErrorTypeInternal),
	}
}

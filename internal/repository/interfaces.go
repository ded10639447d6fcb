package repository

import (
	"context"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
	"github.com/anime-shed/folkart-inspector/pkg/models"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// LoadImage validates the reference, fetches it once and decodes it
	LoadImage(ctx context.Context, imageURL string) (*LoadedImage, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// LoadedImage is a decoded asset together with where it came from.
type LoadedImage struct {
	Asset      *analyzer.ImageAsset
	Provenance models.Provenance
}

// AnalysisRepository defines the interface for analysis result operations
type AnalysisRepository interface {
	// SaveAnalysisResult stores an analysis result, assigning an ID if empty
	SaveAnalysisResult(ctx context.Context, record *models.AnalysisRecord) error

	// GetAnalysisResult retrieves a stored analysis result
	GetAnalysisResult(ctx context.Context, id string) (*models.AnalysisRecord, error)

	// GetAnalysisHistory retrieves analysis history for a specific image URL, newest first
	GetAnalysisHistory(ctx context.Context, imageURL string, limit int) ([]*models.AnalysisRecord, error)

	Close() error
}

package models

import (
	"encoding/json"
	"time"
)

// Provenance describes where a decoded image came from and what it carries
// besides pixels.
type Provenance struct {
	Source         string `json:"source"`
	Format         string `json:"format"`
	ContentType    string `json:"content_type,omitempty"`
	ByteSize       int64  `json:"byte_size"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	PerceptualHash string `json:"perceptual_hash,omitempty"`

	// Embedded metadata, empty when the file carries none
	Artist      string `json:"artist,omitempty"`
	Copyright   string `json:"copyright,omitempty"`
	Description string `json:"description,omitempty"`
	Software    string `json:"software,omitempty"`
}

// AnalysisRecord is a persisted analysis. Report holds the flat report
// document exactly as it was returned to the caller.
type AnalysisRecord struct {
	ID               string          `json:"id"`
	ImageURL         string          `json:"image_url"`
	CreatedAt        time.Time       `json:"created_at"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	Seed             int64           `json:"seed"`
	ArtForm          string          `json:"art_form"`
	Confidence       float64         `json:"confidence"`
	Provenance       Provenance      `json:"provenance"`
	Report           json.RawMessage `json:"report"`
}

// AnalysisMetrics is a snapshot of the process-wide analysis counters.
type AnalysisMetrics struct {
	TotalAnalyses      int64            `json:"total_analyses"`
	SuccessfulAnalyses int64            `json:"successful_analyses"`
	FailedAnalyses     int64            `json:"failed_analyses"`
	CacheHits          int64            `json:"cache_hits"`
	AvgProcessingMs    float64          `json:"avg_processing_time_ms"`
	ArtForms           map[string]int64 `json:"art_forms"`
	Failures           map[string]int64 `json:"failures"`
	BatchPool          *BatchPoolStats  `json:"batch_pool,omitempty"`
}

// BatchPoolStats describes the worker pool behind batch analysis.
type BatchPoolStats struct {
	Workers       int   `json:"workers"`
	ActiveWorkers int64 `json:"active_workers"`
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
}

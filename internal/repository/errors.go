package repository

import "errors"

var (
	// ErrAnalysisNotFound is returned for an unknown analysis ID
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrHistoryDisabled is returned when no analysis store is configured
	ErrHistoryDisabled = errors.New("analysis history is disabled")
)

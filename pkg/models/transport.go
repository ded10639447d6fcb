package models

import "encoding/json"

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// BatchRequest is the body of POST /analyze/batch.
type BatchRequest struct {
	ImageURLs []string `json:"imageUrls" binding:"required,min=1"`
}

// BatchResult is the outcome for one URL of a batch. Exactly one of Report
// and Error is set.
type BatchResult struct {
	ImageURL string          `json:"imageUrl"`
	Report   json.RawMessage `json:"report,omitempty"`
	Error    *ErrorResponse  `json:"error,omitempty"`
}

// BatchResponse preserves the order of the request URLs.
type BatchResponse struct {
	Results []BatchResult `json:"results"`
}

// HistoryResponse lists stored analyses for one image, newest first.
type HistoryResponse struct {
	ImageURL string            `json:"imageUrl"`
	Analyses []*AnalysisRecord `json:"analyses"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
}

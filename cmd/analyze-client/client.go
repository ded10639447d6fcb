package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/anime-shed/folkart-inspector/pkg/models"
)

// summaryKeys are the report fields printed without -full
var summaryKeys = []string{"artFormConfidence", "artRegion", "imageQuality", "priceRange", "collectorValue"}

// Client talks to a running inspector API
type Client struct {
	rest *resty.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		rest: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Analyze returns the raw report for one image
func (c *Client) Analyze(ctx context.Context, imageURL string) (json.RawMessage, error) {
	var apiErr models.ErrorResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(models.AnalyzeRequest{ImageURL: imageURL}).
		SetError(&apiErr).
		Post("/analyze")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, responseError(resp.StatusCode(), apiErr)
	}
	return json.RawMessage(resp.Body()), nil
}

// AnalyzeBatch posts all URLs in one request
func (c *Client) AnalyzeBatch(ctx context.Context, imageURLs []string) (*models.BatchResponse, error) {
	var (
		result models.BatchResponse
		apiErr models.ErrorResponse
	)
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(models.BatchRequest{ImageURLs: imageURLs}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/analyze/batch")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, responseError(resp.StatusCode(), apiErr)
	}
	return &result, nil
}

func responseError(status int, apiErr models.ErrorResponse) error {
	if apiErr.Message == "" {
		return fmt.Errorf("server returned %d", status)
	}
	return fmt.Errorf("%s (%s, %d)", apiErr.Message, apiErr.Type, status)
}

// summarize renders one line per report: the art form followed by the
// summary keys that are present.
func summarize(imageURL string, report json.RawMessage) (string, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(report, &fields); err != nil {
		return "", fmt.Errorf("invalid report: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", imageURL, fields["predictedArtForm"])
	for _, key := range summaryKeys {
		if v, ok := fields[key]; ok {
			fmt.Fprintf(&b, " %s=%v", key, v)
		}
	}
	return b.String(), nil
}

// indent pretty-prints a report without reordering its keys.
func indent(report json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, report, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

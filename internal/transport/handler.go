package transport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/folkart-inspector/internal/config"
	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
	"github.com/anime-shed/folkart-inspector/internal/logger"
	"github.com/anime-shed/folkart-inspector/internal/service"
	"github.com/anime-shed/folkart-inspector/pkg/models"
)

const version = "1.0.0"

var log = logger.Component("http")

// Response headers describing how a report was produced
const (
	HeaderAnalysisID = "X-Analysis-ID"
	HeaderCache      = "X-Cache"
)

// NewHandler builds the HTTP API around svc
func NewHandler(svc service.AnalysisService, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(),
		corsMiddleware(cfg.AllowedCORSOrigins),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", metrics(svc))
	r.POST("/analyze", analyzeImage(svc, cfg.RequestTimeout))
	r.POST("/analyze/batch", analyzeBatch(svc, cfg.RequestTimeout))
	r.GET("/analyses", analysisHistory(svc))
	r.GET("/analyses/:id", getAnalysis(svc))

	return r
}

func analyzeImage(svc service.AnalysisService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("invalid request format", err))
			return
		}

		result, err := svc.AnalyzeWithDetails(ctx, req.ImageURL)
		if err != nil {
			respondError(c, err)
			return
		}

		if result.AnalysisID != "" {
			c.Header(HeaderAnalysisID, result.AnalysisID)
		}
		if result.Cached {
			c.Header(HeaderCache, "HIT")
		} else {
			c.Header(HeaderCache, "MISS")
		}
		c.JSON(http.StatusOK, result.Report)
	}
}

func analyzeBatch(svc service.AnalysisService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("invalid request format", err))
			return
		}

		results, err := svc.AnalyzeBatch(ctx, req.ImageURLs)
		if err != nil {
			respondError(c, err)
			return
		}

		failed := 0
		for _, r := range results {
			if r.Error != nil {
				failed++
			}
		}
		log.WithFields(logrus.Fields{
			"images": len(results),
			"failed": failed,
		}).Info("Batch analysis completed")

		c.JSON(http.StatusOK, models.BatchResponse{Results: results})
	}
}

func getAnalysis(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := svc.GetAnalysis(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func analysisHistory(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageURL := c.Query("imageUrl")

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				respondError(c, apperrors.NewValidationError("limit must be a non-negative integer", err))
				return
			}
			limit = n
		}

		records, err := svc.GetAnalysisHistory(c.Request.Context(), imageURL, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.HistoryResponse{ImageURL: imageURL, Analyses: records})
	}
}

func metrics(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Metrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions

// corsMiddleware allows every origin when the list contains "*". An empty
// list disables CORS handling.
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{HeaderAnalysisID, HeaderCache},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			break
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("Request completed with server error")
			return
		}
		entry.Info("Request completed")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)

	entry := log.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"error_type":  apperrors.GetType(err),
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, service.NewErrorResponse(err))
}

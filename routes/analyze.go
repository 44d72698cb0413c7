package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dynamocards-backend/internal/ai"
	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/transcript"
	"dynamocards-backend/middleware"
	"dynamocards-backend/models"
	"dynamocards-backend/services"
	"dynamocards-backend/utils"

	"github.com/gin-gonic/gin"
)

// AnalysisAPI is the service behind the analysis endpoints.
type AnalysisAPI interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error)
	Submit(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error)
	Summarize(ctx context.Context, req models.SummarizeRequest) (string, error)
	Get(ctx context.Context, id string) (*models.Analysis, error)
	Recent(ctx context.Context, limit int) ([]models.Analysis, error)
}

// SetupHealthRoutes registers the unauthenticated liveness endpoints.
func SetupHealthRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
}

// SetupAnalysisRoutes registers the analysis endpoints behind guards.
func SetupAnalysisRoutes(router *gin.Engine, analysis AnalysisAPI, exporter *services.ExportService, guards ...gin.HandlerFunc) {
	api := router.Group("/")
	api.Use(guards...)

	api.POST("/analyze_video", func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		result, err := analysis.Analyze(c.Request.Context(), req)
		if err != nil {
			respondWithAnalysisError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.AnalyzeResponse{KeyConcepts: result.KeyConcepts})
	})

	api.POST("/analyze_video/async", func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		pending, err := analysis.Submit(c.Request.Context(), req)
		if err != nil {
			respondWithAnalysisError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"analysis_id": pending.ID,
			"status":      pending.Status,
		})
	})

	api.POST("/summarize_video", func(c *gin.Context) {
		var req models.SummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		summary, err := analysis.Summarize(c.Request.Context(), req)
		if err != nil {
			respondWithAnalysisError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	})

	api.GET("/analyses", func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				utils.RespondWithBadRequest(c, "limit must be an integer", gin.H{"limit": raw})
				return
			}
			limit = n
		}

		analyses, err := analysis.Recent(c.Request.Context(), limit)
		if err != nil {
			respondWithAnalysisError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"analyses": analyses, "count": len(analyses)})
	})

	api.GET("/analyses/:id", func(c *gin.Context) {
		a, err := analysis.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithAnalysisError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	})

	api.GET("/analyses/:id/export", func(c *gin.Context) {
		a, err := analysis.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithAnalysisError(c, err)
			return
		}

		file, err := exporter.Export(a, c.DefaultQuery("format", services.FormatJSON))
		if err != nil {
			respondWithAnalysisError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
		c.Data(http.StatusOK, file.ContentType, file.Data)
	})
}

// respondWithAnalysisError maps pipeline errors onto HTTP statuses.
func respondWithAnalysisError(c *gin.Context, err error) {
	details := gin.H{"error": err.Error()}

	switch {
	case errors.Is(err, transcript.ErrInvalidURL):
		utils.RespondWithBadRequest(c, "Invalid YouTube link", details)
	case errors.Is(err, concepts.ErrInvalidArgument):
		utils.RespondWithBadRequest(c, "Invalid analysis parameters", details)
	case errors.Is(err, services.ErrUnsupportedFormat):
		utils.RespondWithBadRequest(c, "Unsupported export format", details)
	case errors.Is(err, transcript.ErrNoTranscript):
		utils.RespondWithUnprocessable(c, "No transcript is available for this video", details)
	case errors.Is(err, transcript.ErrFetchFailed):
		utils.RespondWithBadGateway(c, "Failed to retrieve the video transcript", details)
	case errors.Is(err, ai.ErrModelUnavailable):
		utils.RespondWithServiceUnavailable(c, "The model service is temporarily unavailable", details)
	case errors.Is(err, services.ErrStoreDisabled):
		utils.RespondWithServiceUnavailable(c, "This feature is not configured on the server", nil)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithNotFound(c, "Analysis not found")
	case errors.Is(err, concepts.ErrMalformedOutput):
		utils.RespondWithInternalError(c, "The model returned an unreadable answer", details)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		c.Status(499)
	default:
		logger.Error("analysis request failed", "error", err, "request_id", middleware.GetRequestID(c))
		utils.RespondWithInternalError(c, "Failed to process request", nil)
	}
}

// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, multipart form, headers)
// - Response methods (JSON, Data, Status)
// - Middleware data (c.Get/c.Set)
//
// Go handlers are plain functions. We group related handlers into a struct
// (Handler) that holds shared dependencies.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/pipeline"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// DocumentStore is the read side of the metadata store used by handlers.
type DocumentStore interface {
	GetByFileName(ctx context.Context, fileName string) (*models.Document, error)
	HealthCheck(ctx context.Context) error
	Name() string
}

// Batcher processes a batch of uploads. *worker.Pool satisfies it.
type Batcher interface {
	Batch(ctx context.Context, uploads []pipeline.Upload) (models.ParseResponse, error)
	WorkerCount() int
}

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// This makes testing easy: just create a Handler with fake dependencies.
type Handler struct {
	Store          DocumentStore
	Batcher        Batcher
	MaxUploadBytes int64
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(store DocumentStore, batcher Batcher, maxUploadBytes int64) *Handler {
	return &Handler{
		Store:          store,
		Batcher:        batcher,
		MaxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	status, storeStatus := "ok", "healthy"
	if err := h.Store.HealthCheck(c.Request.Context()); err != nil {
		status, storeStatus = "degraded", "unhealthy: "+err.Error()
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  status,
		Version: Version,
		Store:   fmt.Sprintf("%s (%s)", h.Store.Name(), storeStatus),
		Workers: h.Batcher.WorkerCount(),
	})
}

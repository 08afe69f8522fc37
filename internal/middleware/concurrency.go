// concurrency.go caps how many requests run a handler at the same time.
//
// Each /parse request can keep WORKER_COUNT goroutines busy reading PDFs, so
// the number of batches in flight is bounded with a weighted semaphore.
// Requests wait for a slot until their context ends (client gone or server
// shutting down), then get 503.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

// ConcurrencyLimit admits at most n requests into the rest of the chain.
func ConcurrencyLimit(n int64) gin.HandlerFunc {
	if n < 1 {
		n = 1
	}
	sem := semaphore.NewWeighted(n)

	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "at_capacity",
				Message: "Service at capacity. Try again shortly.",
				Code:    http.StatusServiceUnavailable,
			})
			return
		}
		defer sem.Release(1)

		c.Next()
	}
}

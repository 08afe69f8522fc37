// parse.go handles the upload form and batch PDF parsing.
//
// GET  /        Upload form
// POST /upload  Acknowledge that files were attached
// POST /parse   Parse every file in the "file" field
package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/middleware"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/pipeline"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/worker"
)

// formField is the multipart field carrying the PDFs.
const formField = "file"

// Index serves the upload page.
// GET /
func (h *Handler) Index(c *gin.Context) {
	serveEmbedded(c, "index.html")
}

// Upload acknowledges a multipart request that carries a "file" part.
// Nothing is processed or stored here; /parse does the work.
// POST /upload
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	files, err := h.formFiles(c)
	if err != nil {
		h.tooLarge(c)
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Success: false, Error: "No file part"})
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "File(s) received."})
}

// Parse runs every uploaded file through the pipeline on the worker pool.
// POST /parse
//
// The response is 200 when every file succeeded and 400 otherwise; files
// that did succeed are still listed in "results".
func (h *Handler) Parse(c *gin.Context) {
	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	files, err := h.formFiles(c)
	if err != nil {
		h.tooLarge(c)
		return
	}

	uploads := make([]pipeline.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, pipeline.Upload{
			FileName: fh.Filename,
			Open:     func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	if subject := middleware.GetSubject(c); subject != "" {
		log.Printf("📨 /parse from %s: %d file(s)", subject, len(uploads))
	}

	resp, err := h.Batcher.Batch(c.Request.Context(), uploads)
	if errors.Is(err, worker.ErrNoFilesUploaded) {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Success: false, Message: "No files uploaded."})
		return
	}
	if err != nil {
		log.Printf("❌ Batch failed: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "batch_failed",
			Message: "Failed to process the uploaded files",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, resp)
}

// formFiles returns the non-empty file parts of the "file" field.
// A request that isn't multipart simply has no files. The only error
// returned is a body over the size limit.
//
// Browsers send an empty part with no file name when nothing was chosen,
// so such parts are skipped.
func (h *Handler) formFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	if c.Request.ContentLength > h.MaxUploadBytes {
		return nil, &http.MaxBytesError{Limit: h.MaxUploadBytes}
	}

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, nil
	}

	var files []*multipart.FileHeader
	for _, fh := range form.File[formField] {
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		files = append(files, fh)
	}
	return files, nil
}

func (h *Handler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
		Error:   "payload_too_large",
		Message: "Upload exceeds the maximum request size",
		Code:    http.StatusRequestEntityTooLarge,
	})
}

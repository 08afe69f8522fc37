// download.go serves stored metadata as a downloadable file.
//
// Supported formats:
//   - json: the record, indented (default)
//   - yaml: the same fields as YAML
//   - md: a Markdown summary sheet
//
// Go Pattern: Each export format is its own function. This makes it easy
// to add new formats later: just add a case to the switch and a new
// formatter function. This is the "Strategy pattern" without the ceremony.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

// Download returns the metadata stored for a file name as an attachment.
// GET /download/:fileName?format=json|yaml|md
func (h *Handler) Download(c *gin.Context) {
	fileName := c.Param("fileName")
	format := c.DefaultQuery("format", "json")

	// Validate format before doing any store work
	validFormats := map[string]bool{"json": true, "yaml": true, "md": true}
	if !validFormats[format] {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_format",
			Message: "Supported formats: json, yaml, md",
			Code:    http.StatusBadRequest,
		})
		return
	}

	doc, err := h.Store.GetByFileName(c.Request.Context(), fileName)
	if errors.Is(err, models.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Document not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to load metadata for %s: %v", fileName, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "store_error",
			Message: "Failed to load metadata",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	record := doc.Export()
	base := sanitizeFilename(fileName) + "_metadata"

	// Go Pattern: Switch on the format string, clean and extensible.
	switch format {
	case "json":
		exportJSON(c, &record, base)
	case "yaml":
		exportYAML(c, &record, base)
	case "md":
		exportMarkdown(c, &record, base)
	}
}

// exportJSON returns the record as indented JSON. The ID is omitted.
func exportJSON(c *gin.Context, doc *models.Document, base string) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		exportFailed(c, "JSON", err)
		return
	}
	attach(c, base+".json", "application/json", data)
}

// exportYAML returns the record as YAML using the model's yaml tags.
func exportYAML(c *gin.Context, doc *models.Document, base string) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		exportFailed(c, "YAML", err)
		return
	}
	attach(c, base+".yaml", "application/yaml", data)
}

// exportMarkdown returns a human-readable metadata sheet.
func exportMarkdown(c *gin.Context, doc *models.Document, base string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Title))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Author | %s |\n", escapeCell(doc.Authors)))
	sb.WriteString(fmt.Sprintf("| Keywords | %s |\n", escapeCell(strings.Join(doc.Keywords, ", "))))
	sb.WriteString(fmt.Sprintf("| File | %s |\n", escapeCell(doc.FileName)))
	sb.WriteString(fmt.Sprintf("| Size | %d bytes |\n", doc.FileSize))
	sb.WriteString(fmt.Sprintf("| Pages | %d |\n", doc.PageCount))
	sb.WriteString(fmt.Sprintf("| Time taken | %.2f s |\n", doc.TimeTakenSec))
	sb.WriteString(fmt.Sprintf("| Memory | %.2f MB |\n", doc.MemoryUsageMB))
	if !doc.ProcessedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("| Processed | %s |\n", doc.ProcessedAt.Format("2006-01-02 15:04:05 MST")))
	}
	sb.WriteString("\n---\n\n")
	sb.WriteString("## Summary\n\n")
	sb.WriteString(doc.Summary)
	sb.WriteString("\n")

	attach(c, base+".md", "text/markdown; charset=utf-8", []byte(sb.String()))
}

// --- Helper Functions ---

func attach(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

func exportFailed(c *gin.Context, format string, err error) {
	log.Printf("❌ %s export failed: %v", format, err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "export_error",
		Message: "Failed to generate " + format + " export",
		Code:    http.StatusInternalServerError,
	})
}

// escapeCell keeps pipes and newlines from breaking a Markdown table row.
func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ", "\r", "").Replace(s)
}

// sanitizeFilename removes characters that aren't safe in a
// Content-Disposition header.
// Go Pattern: Keep it simple: replace unsafe characters with hyphens
// and trim the result. Stored names are already sanitized on upload;
// this only guards the header against whatever the URL contained.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", ";", "-", "\n", " ", "\r", "",
	)
	name = replacer.Replace(name)

	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	name = strings.TrimSpace(name)

	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		name = "document"
	}
	return name
}

// docs.go serves the API reference.
//
// GET /api/docs               Swagger UI page (web/docs.html)
// GET /api/docs/openapi.yaml  OpenAPI 3.0 document
//
// openapi.yaml is written by hand and kept next to the handlers it
// describes; update both together.
package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-insights-api/web"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// ServeOpenAPISpec returns the raw OpenAPI YAML.
func (h *Handler) ServeOpenAPISpec(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openAPIDocument)
}

// ServeSwaggerUI returns the reference page, which loads Swagger UI from a
// CDN and points it at ServeOpenAPISpec.
func (h *Handler) ServeSwaggerUI(c *gin.Context) {
	serveEmbedded(c, "docs.html")
}

// serveEmbedded writes an embedded HTML page or a 500 if it is missing.
func serveEmbedded(c *gin.Context, name string) {
	page, err := web.Files.ReadFile(name)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

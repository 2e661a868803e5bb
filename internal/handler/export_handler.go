package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/pkg/response"
)

type sessionExporter interface {
	ExportSession(ctx context.Context, actor *models.Profile, sessionID string, req dto.ExportSessionRequest) (*dto.ExportResponse, error)
	Open(token string) (*os.File, string, error)
}

// ExportHandler renders sessions to downloadable files.
type ExportHandler struct {
	exports sessionExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports sessionExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Export a session as CSV or PDF
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body dto.ExportSessionRequest true "Format"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /session/{id}/export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	var req dto.ExportSessionRequest
	if !bindJSON(c, &req, "export") {
		return
	}
	res, err := h.exports.ExportSession(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Download godoc
// @Summary Download an export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, name, err := h.exports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	contentType := "text/csv"
	if filepath.Ext(name) == ".pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(name)+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}

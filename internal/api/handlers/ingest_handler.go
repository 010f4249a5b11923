// backend-go/internal/api/handlers/ingest_handler.go
package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/service"
)

type IngestHandler struct {
	ingestService *service.IngestService
	uploadDir     string
}

func NewIngestHandler(ingestService *service.IngestService, uploadDir string) *IngestHandler {
	if uploadDir == "" {
		uploadDir = "data/uploads"
	}
	return &IngestHandler{ingestService: ingestService, uploadDir: uploadDir}
}

// UploadSales handles sales file uploads for processing
func (h *IngestHandler) UploadSales(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	uploadedFiles := make([]*domain.UploadedFile, 0, len(files))
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".csv" && ext != ".xlsx" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type: " + file.Filename})
			return
		}

		// Save the uploaded file temporarily
		filePath := filepath.Join(h.uploadDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
			continue
		}

		uploadedFiles = append(uploadedFiles, &domain.UploadedFile{
			Filename: file.Filename,
			Path:     filePath,
			Size:     file.Size,
		})
	}

	if len(uploadedFiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid files to process"})
		return
	}

	// Process files in the background. The request context ends with the
	// response, so the goroutine gets its own.
	go func() {
		results, err := h.ingestService.ProcessSalesFiles(context.Background(), uploadedFiles)
		if err != nil {
			log.Error().Err(err).Msg("failed to process sales files")
			return
		}
		for _, r := range results {
			log.Info().
				Str("filename", r.Filename).
				Int("rows_read", r.RowsRead).
				Int("rows_skipped", r.RowsSkipped).
				Int("items", r.Items).
				Msg("sales file processed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "files are being processed",
		"count":   len(uploadedFiles),
	})
}

package server

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/spigell/interview-insights/internal/report"
)

type systemCheckResponse struct {
	APIKeyConfigured bool   `json:"api_key_configured"`
	Provider         string `json:"provider"`
	Model            string `json:"model,omitempty"`
	PDFSupported     bool   `json:"pdf_supported"`
	WordSupported    bool   `json:"word_supported"`
	MaxNotes         int    `json:"max_notes"`
	MaxUpload        string `json:"max_upload"`
}

func (s *Server) handleSystemCheck(c echo.Context) error {
	caps := s.extractor.Capabilities()

	return c.JSON(http.StatusOK, systemCheckResponse{
		APIKeyConfigured: s.cfg.APIKeyConfigured,
		Provider:         s.cfg.Provider,
		Model:            s.cfg.Model,
		PDFSupported:     caps.PDF,
		WordSupported:    caps.Word,
		MaxNotes:         report.MaxNoteSets,
		MaxUpload:        humanize.Bytes(uint64(s.cfg.MaxUploadBytes)),
	})
}

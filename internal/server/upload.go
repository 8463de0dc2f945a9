package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/extract"
	"github.com/spigell/interview-insights/internal/logger"
	"github.com/spigell/interview-insights/internal/metrics"
	"github.com/spigell/interview-insights/internal/report"
)

var fileFields = []string{"files", "files[]"}

const manualField = "manual_text"

type uploadResponse struct {
	Success    bool     `json:"success"`
	Analysis   string   `json:"analysis"`
	NotesCount int      `json:"notes_count"`
	Sources    []string `json:"sources"`
	SessionID  string   `json:"session_id,omitempty"`
}

// handleUpload collects uploaded files and manual entries into note sets and
// returns a single report over all of them.
func (s *Server) handleUpload(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.cfg.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		if isTooLarge(err) {
			return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("Upload exceeds the %s limit.", humanize.Bytes(uint64(s.cfg.MaxUploadBytes))),
			})
		}
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid upload form."})
	}
	defer form.RemoveAll()

	notes, err := s.collectNotes(form)
	if err != nil {
		s.logger.Error("reading uploaded files", zap.Error(err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Could not read uploaded files."})
	}

	rep, err := s.reports.Build(req.Context(), notes)
	if err != nil {
		var verr *report.ValidationError
		if errors.As(err, &verr) {
			s.metrics.ObserveReport(metrics.OutcomeInvalid)
			return c.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage(verr)})
		}

		s.metrics.ObserveReport(metrics.OutcomeError)
		s.logger.Warn("report failed", zap.Int("notes_count", len(notes)), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Analysis error: " + err.Error()})
	}
	s.metrics.ObserveReport(metrics.OutcomeSuccess)

	sessionID := strings.TrimSpace(formValue(form, "session_id"))
	if sessionID != "" {
		s.sessions.Record(sessionID, rep.Prompt, rep.Analysis)
		logger.WithSession(s.logger, sessionID).Debug("report recorded in conversation")
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Success:    true,
		Analysis:   rep.Analysis,
		NotesCount: rep.NotesCount,
		Sources:    rep.Sources,
		SessionID:  sessionID,
	})
}

// collectNotes keeps files first in form order, then manual entries. Files
// that cannot be read as text keep their slot with a placeholder.
func (s *Server) collectNotes(form *multipart.Form) ([]report.NoteSet, error) {
	var notes []report.NoteSet

	for _, field := range fileFields {
		for _, fh := range form.File[field] {
			if strings.TrimSpace(fh.Filename) == "" {
				continue
			}

			data, err := readFile(fh)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fh.Filename, err)
			}

			content, err := s.extractor.Content(fh.Filename, data)
			if err != nil {
				kind := "unknown"
				var extractErr *extract.Error
				if errors.As(err, &extractErr) {
					kind = string(extractErr.Kind)
				}
				s.metrics.ObserveExtractionFailure(kind)
				s.logger.Warn("file replaced by placeholder",
					zap.String("filename", fh.Filename),
					zap.String("kind", kind),
					zap.Error(err),
				)
			}

			s.metrics.ObserveNoteSet(metrics.OriginFile)
			notes = append(notes, report.NoteSet{Source: fh.Filename, Content: content})
		}
	}

	for i, text := range form.Value[manualField] {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		s.metrics.ObserveNoteSet(metrics.OriginManual)
		notes = append(notes, report.NoteSet{Source: report.ManualSource(i + 1), Content: text})
	}

	return notes, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func validationMessage(err *report.ValidationError) string {
	switch err.Reason {
	case report.ReasonNoNotes:
		return "No interview notes provided. Please upload files or enter text."
	case report.ReasonTooManyNotes:
		return fmt.Sprintf("Maximum %d sets of notes allowed. You provided %d.", report.MaxNoteSets, err.Count)
	default:
		return err.Error()
	}
}

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/interview-insights/internal/session"
)

type sessionRequest struct {
	SessionID string `mapstructure:"session_id"`
	Message   string `mapstructure:"message"`
}

// decodeSessionRequest accepts loosely typed JSON, e.g. numeric session ids
// generated by browsers.
func decodeSessionRequest(c echo.Context) (*sessionRequest, error) {
	var raw map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	req := &sessionRequest{}
	if err := mapstructure.WeakDecode(raw, req); err != nil {
		return nil, err
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	return req, nil
}

func (s *Server) handleMessage(c echo.Context) error {
	req, err := decodeSessionRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body."})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := s.sessions.Acknowledge(c.Request().Context(), req.SessionID, req.Message)
	if errors.Is(err, session.ErrEmptyMessage) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Message must not be empty."})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Error: " + err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":    reply,
		"session_id": req.SessionID,
	})
}

func (s *Server) handleAnalyze(c echo.Context) error {
	req, err := decodeSessionRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body."})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "session_id is required."})
	}

	analysis, err := s.sessions.Analyze(c.Request().Context(), req.SessionID)
	if errors.Is(err, session.ErrNothingToAnalyze) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "No interview notes to analyze."})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Analysis error: " + err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"analysis":   analysis,
		"session_id": req.SessionID,
	})
}

func (s *Server) handleClear(c echo.Context) error {
	req, err := decodeSessionRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body."})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "session_id is required."})
	}

	s.sessions.Clear(req.SessionID)

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

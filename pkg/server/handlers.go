package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/helmcode/devcompanion/pkg/analyzer"
	"github.com/helmcode/devcompanion/pkg/snapshot"
)

// sourceHeader tells clients whether the body came from the model or the
// heuristic engine without changing the result shape.
const sourceHeader = "X-Analysis-Source"

const (
	errInternal    = "internal_error"
	errNotFound    = "not_found"
	errNoSnapshots = "no_snapshots"
)

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "env": s.env})
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	result, err := s.analyzer.Analyze(c.Request.Context(), req.Code, req.Language)
	if errors.Is(err, analyzer.ErrEmptyCode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code is required"})
		return
	}
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI analysis failed"})
		return
	}

	c.Header(sourceHeader, result.Source)
	c.JSON(http.StatusOK, result.Analysis)
}

func (s *Server) saveSnapshot(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "errors": []string{snapshot.CodePayloadRequired}})
		return
	}

	payload, err := snapshot.ParsePayload(body)
	if err != nil {
		s.validationFailed(c, err)
		return
	}

	snap, err := s.store.Save(c.Request.Context(), payload)
	if err != nil {
		var verr *snapshot.ValidationError
		if errors.As(err, &verr) {
			s.validationFailed(c, err)
			return
		}
		s.internalError(c, "save snapshot", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "snapshot": snap})
}

func (s *Server) getSnapshot(c *gin.Context) {
	snap, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, snapshot.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": errNotFound})
		return
	}
	if err != nil {
		s.internalError(c, "get snapshot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "snapshot": snap})
}

func (s *Server) listSnapshots(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("latest") == "true" {
		snap, err := s.store.Latest(ctx)
		if errors.Is(err, snapshot.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": errNoSnapshots})
			return
		}
		if err != nil {
			s.internalError(c, "latest snapshot", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "snapshot": snap})
		return
	}

	if file := strings.TrimSpace(c.Query("file")); file != "" {
		snaps, err := s.store.ListByFile(ctx, file)
		if err != nil {
			s.internalError(c, "list snapshots by file", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "snapshots": snaps})
		return
	}

	snaps, err := s.store.Recent(ctx, parseLimit(c.Query("limit")))
	if err != nil {
		s.internalError(c, "recent snapshots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "snapshots": snaps})
}

// parseLimit reads the limit query value. Missing or malformed values mean
// the maximum; anything else is clamped to 1..MaxRecent.
func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return snapshot.MaxRecent
	}
	if n < 1 {
		return 1
	}
	return snapshot.ClampLimit(n)
}

func (s *Server) validationFailed(c *gin.Context, err error) {
	var verr *snapshot.ValidationError
	if !errors.As(err, &verr) {
		verr = &snapshot.ValidationError{Errors: []string{snapshot.CodePayloadRequired}}
	}
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "errors": verr.Errors})
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.logger.Error("snapshot store failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": errInternal})
}

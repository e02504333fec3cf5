package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthai-suite/triage-server/internal/domain"
	"github.com/healthai-suite/triage-server/internal/repository"
)

// historyPageLimit caps one page of audit-log results.
const historyPageLimit = 100

// requireHistory rejects audit-log requests when persistence is disabled.
func (s *Server) requireHistory(c *gin.Context) bool {
	if s.deps.History == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, "analysis history is disabled")
		return false
	}
	return true
}

// historyPage reads limit/offset query parameters with sane bounds.
func historyPage(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > historyPageLimit {
		limit = historyPageLimit
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// handleListHistory lists audit-log records filtered by session or urgency.
func (s *Server) handleListHistory(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}

	limit, offset := historyPage(c)
	ctx := c.Request.Context()

	var (
		records []*repository.AnalysisRecord
		err     error
	)
	switch {
	case c.Query("session_id") != "":
		records, err = s.deps.History.ListBySession(ctx, c.Query("session_id"), limit, offset)
	case c.Query("urgency") != "":
		tier := domain.UrgencyTier(strings.ToUpper(c.Query("urgency")))
		if !tier.IsValid() {
			s.errorResponse(c, http.StatusBadRequest, "invalid urgency tier")
			return
		}
		records, err = s.deps.History.ListByUrgency(ctx, tier, limit, offset)
	default:
		s.errorResponse(c, http.StatusBadRequest, "session_id or urgency query parameter is required")
		return
	}

	if err != nil {
		s.log.WithError(err).Error("Failed to list analysis history")
		s.errorResponse(c, http.StatusInternalServerError, "failed to read history")
		return
	}

	if records == nil {
		records = []*repository.AnalysisRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// handleGetHistory returns one audit-log record by ID.
func (s *Server) handleGetHistory(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid record ID")
		return
	}

	record, err := s.deps.History.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.errorResponse(c, http.StatusNotFound, "record not found")
			return
		}
		s.log.WithError(err).Error("Failed to get analysis history record")
		s.errorResponse(c, http.StatusInternalServerError, "failed to read history")
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleDeleteHistory removes one audit-log record.
func (s *Server) handleDeleteHistory(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid record ID")
		return
	}

	if err := s.deps.History.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.errorResponse(c, http.StatusNotFound, "record not found")
			return
		}
		s.log.WithError(err).Error("Failed to delete analysis history record")
		s.errorResponse(c, http.StatusInternalServerError, "failed to delete record")
		return
	}

	c.Status(http.StatusNoContent)
}

// handleHistoryStats returns per-tier audit-log counts.
func (s *Server) handleHistoryStats(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}

	counts, err := s.deps.History.CountByUrgency(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to count analysis history")
		s.errorResponse(c, http.StatusInternalServerError, "failed to read history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"by_tier": counts})
}

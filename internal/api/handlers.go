package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthai-suite/triage-server/internal/domain"
	"github.com/healthai-suite/triage-server/internal/feedback"
	"github.com/healthai-suite/triage-server/internal/repository"
	"github.com/healthai-suite/triage-server/internal/risk"
)

type analyzeRequest struct {
	Text      string   `json:"text"`
	Symptoms  []string `json:"symptoms"`
	SessionID string   `json:"session_id"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string             `json:"session_id"`
	Reply     string             `json:"reply"`
	Urgency   domain.UrgencyTier `json:"urgency"`
}

type feedbackRequest struct {
	InputText    string             `json:"input_text"`
	SymptomKey   string             `json:"symptom_key" binding:"required"`
	SessionID    string             `json:"session_id"`
	AssignedTier domain.UrgencyTier `json:"assigned_tier"`
	UserTier     domain.UrgencyTier `json:"user_tier"`
	UserAgreed   bool               `json:"user_agreed"`
	Notes        string             `json:"notes"`
}

func (s *Server) errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"error":          msg,
		"correlation_id": c.GetString("correlation_id"),
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleAnalyze runs one symptom analysis over free text or a token list.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var input domain.SymptomInput
	if len(req.Symptoms) > 0 {
		input = domain.TokenInput(req.Symptoms)
	} else {
		input = domain.TextInput(req.Text)
	}

	result := s.deps.Analyzer.Analyze(input)

	s.recordHistory(c, req.SessionID, req.Text, result)

	c.JSON(http.StatusOK, result)
}

// recordHistory appends the analysis to the audit log when enabled.
// Persistence failures are logged and never surface to the caller.
func (s *Server) recordHistory(c *gin.Context, sessionID, inputText string, result *domain.AnalysisResult) {
	if s.deps.History == nil || len(result.Matched) == 0 {
		return
	}

	record := repository.NewRecord(sessionID, inputText, *result)
	if err := s.deps.History.Create(c.Request.Context(), record); err != nil {
		s.log.WithError(err).Warn("Failed to record analysis history")
	}
}

// handleChat routes one conversational message and updates the transcript.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		s.errorResponse(c, http.StatusBadRequest, "message is required")
		return
	}

	ctx := c.Request.Context()

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := s.deps.Sessions.Create(ctx)
		if err != nil {
			s.errorResponse(c, http.StatusInternalServerError, "failed to create session")
			return
		}
		sessionID = id
	}

	if err := s.deps.Sessions.Append(ctx, sessionID, domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now(),
	}); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.errorResponse(c, http.StatusNotFound, "session not found")
			return
		}
		s.errorResponse(c, http.StatusInternalServerError, "failed to record message")
		return
	}

	reply, tag := s.deps.Router.Respond(req.Message)

	if err := s.deps.Sessions.Append(ctx, sessionID, domain.ChatMessage{
		Role:       domain.RoleBot,
		Content:    reply,
		UrgencyTag: tag,
		Timestamp:  time.Now(),
	}); err != nil {
		s.log.WithError(err).Warn("Failed to record bot reply")
	}

	c.JSON(http.StatusOK, chatResponse{
		SessionID: sessionID,
		Reply:     reply,
		Urgency:   tag,
	})
}

// handleDrugLookup serves the medication reference table.
func (s *Server) handleDrugLookup(c *gin.Context) {
	result := s.deps.Drugs.Lookup(c.Param("query"))

	status := http.StatusOK
	if result.Status == domain.DrugNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, result)
}

// handleRiskPredict proxies a feature vector to the heart-disease model.
func (s *Server) handleRiskPredict(c *gin.Context) {
	var features risk.FeatureVector
	if err := c.ShouldBindJSON(&features); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	prediction, err := s.deps.Risk.Predict(c.Request.Context(), &features)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidFeatureVector):
			s.errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrModelUnavailable):
			s.errorResponse(c, http.StatusServiceUnavailable, "risk model unavailable")
		default:
			s.errorResponse(c, http.StatusServiceUnavailable, "risk model unavailable")
		}
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// handleCreateSession registers a new chat session.
func (s *Server) handleCreateSession(c *gin.Context) {
	id, err := s.deps.Sessions.Create(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

// handleGetMessages returns a session transcript in append order.
func (s *Server) handleGetMessages(c *gin.Context) {
	msgs, err := s.deps.Sessions.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.errorResponse(c, http.StatusNotFound, "session not found")
			return
		}
		s.errorResponse(c, http.StatusInternalServerError, "failed to read transcript")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
}

// handleClearMessages empties a session transcript.
func (s *Server) handleClearMessages(c *gin.Context) {
	if err := s.deps.Sessions.Clear(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.errorResponse(c, http.StatusNotFound, "session not found")
			return
		}
		s.errorResponse(c, http.StatusInternalServerError, "failed to clear transcript")
		return
	}
	c.Status(http.StatusNoContent)
}

// handleSaveFeedback stores user feedback on an assessment.
func (s *Server) handleSaveFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "symptom_key is required")
		return
	}
	if !req.AssignedTier.IsValid() || !req.UserTier.IsValid() {
		s.errorResponse(c, http.StatusBadRequest, "invalid urgency tier")
		return
	}

	fb := &feedback.Feedback{
		InputText:    req.InputText,
		SymptomKey:   req.SymptomKey,
		SessionID:    req.SessionID,
		AssignedTier: req.AssignedTier,
		UserTier:     req.UserTier,
		UserAgreed:   req.UserAgreed,
		Notes:        req.Notes,
	}

	if err := s.deps.Feedback.Save(c.Request.Context(), fb); err != nil {
		s.log.WithError(err).Error("Failed to save feedback")
		s.errorResponse(c, http.StatusInternalServerError, "failed to save feedback")
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// statsSampleLimit bounds how many entries the stats endpoint aggregates.
const statsSampleLimit = 10000

// handleFeedbackStats aggregates agreement counts across stored feedback.
func (s *Server) handleFeedbackStats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := s.deps.Feedback.Count(ctx)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "failed to read feedback")
		return
	}

	entries, err := s.deps.Feedback.List(ctx, statsSampleLimit, 0)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "failed to read feedback")
		return
	}

	var agreed int64
	byTier := map[domain.UrgencyTier]int64{}
	for _, fb := range entries {
		if fb.UserAgreed {
			agreed++
		}
		byTier[fb.AssignedTier]++
	}

	rate := 0.0
	if len(entries) > 0 {
		rate = float64(agreed) / float64(len(entries))
	}

	c.JSON(http.StatusOK, gin.H{
		"total":          total,
		"agreed":         agreed,
		"agreement_rate": rate,
		"by_tier":        byTier,
	})
}

// handleFeedbackExport serves the stored feedback as a JSON document.
func (s *Server) handleFeedbackExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.deps.Feedback.ExportJSON(c.Request.Context(), &buf); err != nil {
		s.log.WithError(err).Error("Failed to export feedback")
		s.errorResponse(c, http.StatusInternalServerError, "failed to export feedback")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="feedback-export.json"`)
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

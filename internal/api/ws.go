package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/healthai-suite/triage-server/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST layer already allows any origin; the socket follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsInbound struct {
	Message string `json:"message"`
}

type wsOutbound struct {
	SessionID string             `json:"session_id"`
	Reply     string             `json:"reply"`
	Urgency   domain.UrgencyTier `json:"urgency"`
}

// handleWebsocketChat runs a chat loop over one websocket connection. Each
// connection owns a fresh session; the transcript survives the socket and
// stays readable through the session endpoints.
func (s *Server) handleWebsocketChat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	sessionID, err := s.deps.Sessions.Create(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to create websocket session")
		return
	}

	s.log.WithField("session_id", sessionID).Info("Websocket chat session started")

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.WithError(err).Debug("Websocket read error")
			}
			return
		}

		if appendErr := s.deps.Sessions.Append(ctx, sessionID, domain.ChatMessage{
			Role:      domain.RoleUser,
			Content:   in.Message,
			Timestamp: time.Now(),
		}); appendErr != nil && in.Message != "" {
			s.log.WithError(appendErr).Warn("Failed to record websocket message")
		}

		reply, tag := s.deps.Router.Respond(in.Message)

		if appendErr := s.deps.Sessions.Append(ctx, sessionID, domain.ChatMessage{
			Role:       domain.RoleBot,
			Content:    reply,
			UrgencyTag: tag,
			Timestamp:  time.Now(),
		}); appendErr != nil {
			s.log.WithError(appendErr).Warn("Failed to record websocket reply")
		}

		if err := conn.WriteJSON(wsOutbound{
			SessionID: sessionID,
			Reply:     reply,
			Urgency:   tag,
		}); err != nil {
			s.log.WithError(err).Debug("Websocket write error")
			return
		}
	}
}

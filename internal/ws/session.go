package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/middleware"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"go.uber.org/zap"
)

// commandTimeout bounds the upstream work of one stream command.
const commandTimeout = 30 * time.Second

// SessionHandler streams a session's view over a websocket and accepts the
// same commands as the REST routes.
type SessionHandler struct {
	Hub      *Hub
	Cfg      *config.Config
	Sessions *service.SessionService
	upgrader websocket.Upgrader
}

// NewSessionHandler returns a new SessionHandler.
func NewSessionHandler(hub *Hub, cfg *config.Config, sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{
		Hub:      hub,
		Cfg:      cfg,
		Sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(cfg.EnvVars.AllowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// originChecker allows the configured origins, localhost for development,
// and clients that send no Origin at all.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set[origin] {
			return true
		}
		return strings.HasPrefix(origin, "http://localhost:") || origin == "http://localhost"
	}
}

// Publish sends a message to every client watching a session. It never
// blocks; messages are dropped if the hub is saturated.
func (h *Hub) Publish(sessionID, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		logger.Get().Error("failed to encode ws message", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- &RoomMessage{SessionID: sessionID, Message: data}:
	default:
		logger.Get().Warn("ws broadcast queue full", zap.String("session_id", sessionID))
	}
}

// End disconnects every client of a session. It does not wait for the hub
// to process the close.
func (h *Hub) End(sessionID string) {
	select {
	case h.CloseRoom <- sessionID:
	default:
		go func() { h.CloseRoom <- sessionID }()
	}
}

// HandleSessionStream upgrades the request to a websocket bound to one
// session. Authentication uses a "token" query parameter because browsers
// cannot set headers on websocket requests.
func (sh *SessionHandler) HandleSessionStream(c *gin.Context) {
	log := logger.FromContext(c)

	sessionID := c.Param("session_id")
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	tokenSessionID, err := middleware.ParseSessionToken(sh.Cfg.EnvVars.JwtSecretKey, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if tokenSessionID != sessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this session"})
		return
	}

	session, err := sh.Sessions.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return
	}

	conn, err := sh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}

	client := NewClient(sh.Hub, conn, sessionID)
	client.OnPong = func() { sh.Sessions.KeepAlive(sessionID) }
	sh.Hub.Join(client)

	sh.send(client, MsgTypeConnected, ConnectedPayload{
		SessionID: sessionID,
		View:      session.Controller.View(),
	})

	log.Info("view stream started", zap.String("session_id", sessionID))

	go client.WritePump()
	go client.ReadPump(sh.handleMessage)
}

// handleMessage parses an incoming message and applies it to the client's
// session. View changes reach every client through the session hook;
// errors go to the sender only.
func (sh *SessionHandler) handleMessage(client *Client, data []byte) {
	log := logger.Get()

	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		sh.sendError(client, "invalid message format")
		return
	}

	session, err := sh.Sessions.GetSession(client.SessionID)
	if err != nil {
		sh.sendError(client, "session not found or expired")
		return
	}

	log.Debug("received ws message",
		zap.String("type", msg.Type),
		zap.String("session_id", client.SessionID),
	)

	switch msg.Type {
	case MsgTypeSubmitQuery:
		var q browse.Query
		if err := json.Unmarshal(msg.Payload, &q); err != nil {
			sh.sendError(client, "invalid submit_query payload")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if _, err := session.Controller.SubmitQuery(ctx, q); err != nil {
			sh.sendError(client, userMessage(err))
		}

	case MsgTypeGoToPage:
		var p GoToPagePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			sh.sendError(client, "invalid go_to_page payload")
			return
		}
		session.Controller.GoToPage(p.Page)

	case MsgTypeReset:
		session.Controller.ResetToInput()

	case MsgTypeOpenSimilar, MsgTypeCloseSimilar:
		var p SimilarPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.RecipeID <= 0 {
			sh.sendError(client, "invalid "+msg.Type+" payload")
			return
		}
		widget := sh.Sessions.MountSimilar(session, p.RecipeID)
		var view browse.SimilarView
		if msg.Type == MsgTypeOpenSimilar {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			view = widget.Open(ctx)
		} else {
			view = widget.Close()
		}
		sh.send(client, MsgTypeSimilar, view)

	default:
		sh.sendError(client, "unknown message type: "+msg.Type)
	}
}

// userMessage returns the text shown for a failed command.
func userMessage(err error) string {
	var vErr *browse.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	var tErr *browse.TransportError
	if errors.As(err, &tErr) {
		return tErr.Message
	}
	return "request failed"
}

func (sh *SessionHandler) send(client *Client, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		return
	}
	if !sh.Hub.SendTo(client, data) {
		logger.Get().Debug("ws message dropped",
			zap.String("type", msgType),
			zap.String("session_id", client.SessionID),
		)
	}
}

func (sh *SessionHandler) sendError(client *Client, message string) {
	sh.send(client, MsgTypeError, ErrorPayload{Message: message})
}

package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"driftchat/internal/events"
	"driftchat/internal/services"
	"driftchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	auth       *services.AuthService
	hub        *Hub
	authorizer *ChannelAuthorizer
	bufferSize int
	upgrader   websocket.Upgrader
}

func NewHandler(auth *services.AuthService, hub *Hub, authorizer *ChannelAuthorizer, bufferSize int, allowedOrigins []string) *Handler {
	return &Handler{
		auth:       auth,
		hub:        hub,
		authorizer: authorizer,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

func bearerToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Connect authenticates, upgrades and serves one connection until it closes.
func (h *Handler) Connect(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", services.CodeUnauthorized))
		return
	}
	userID, err := h.auth.Authenticate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", services.CodeUnauthorized))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.Error("upgrade", userID, "", err)
		return
	}

	ctx := c.Request.Context()
	client := NewClient(conn, userID, h.bufferSize)
	h.hub.Connect(ctx, client)
	go client.WritePump()

	if err := client.ReadPump(func(frame []byte) {
		h.HandleFrame(ctx, client, frame)
	}); err != nil {
		h.hub.logger.Error("unexpected_close", userID, client.ID, err)
	}
	h.hub.Disconnect(ctx, client)
}

// HandleFrame applies one inbound client frame.
func (h *Handler) HandleFrame(ctx context.Context, client *Client, raw []byte) {
	var frame events.ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		h.reply(client, events.EventTypeError, events.ErrorPayload{Code: services.CodeValidation, Message: "malformed frame"})
		return
	}

	switch frame.Type {
	case events.FramePing:
		h.reply(client, events.EventTypePong, nil)
	case events.FrameSessionJoin, events.FrameRoomJoin:
		channel, ok := h.channelFor(client, frame)
		if !ok {
			return
		}
		allowed, err := h.authorizer.CanSubscribe(ctx, client.UserID, channel)
		if err != nil {
			h.hub.logger.Error("authorize", client.UserID, client.ID, err, zap.String("channel", channel))
			h.reply(client, events.EventTypeError, events.ErrorPayload{Code: services.CodeInternal, Message: "internal server error"})
			return
		}
		if !allowed {
			h.reply(client, events.EventTypeError, events.ErrorPayload{Code: services.CodeForbidden, Message: "not a member of " + channel})
			return
		}
		h.hub.Join(client, channel)
	case events.FrameSessionLeave, events.FrameRoomLeave:
		if channel, ok := h.channelFor(client, frame); ok {
			h.hub.Leave(client, channel)
		}
	default:
		h.hub.logger.Warn("unknown_frame", client.UserID, client.ID, zap.String("type", frame.Type))
		h.reply(client, events.EventTypeError, events.ErrorPayload{Code: services.CodeValidation, Message: "unknown frame type"})
	}
}

func (h *Handler) channelFor(client *Client, frame events.ClientFrame) (string, bool) {
	id, err := uuid.Parse(frame.ConversationID)
	if err != nil {
		h.reply(client, events.EventTypeError, events.ErrorPayload{Code: services.CodeValidation, Message: "invalid conversation_id"})
		return "", false
	}
	if frame.Type == events.FrameSessionJoin || frame.Type == events.FrameSessionLeave {
		return events.SessionChannel(id), true
	}
	return events.RoomChannel(id), true
}

func (h *Handler) reply(client *Client, eventType string, payload interface{}) {
	data, err := events.Encode(eventType, payload)
	if err != nil {
		return
	}
	client.Send(data)
}

package handler

import (
	"net/http"

	"driftchat/internal/services"
	"driftchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	service   *services.SessionService
	directory services.Directory
}

func NewSessionHandler(service *services.SessionService, directory services.Directory) *SessionHandler {
	return &SessionHandler{service: service, directory: directory}
}

// GetOrCreate handles POST /sessions/:id where id is the other user.
func (h *SessionHandler) GetOrCreate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "id")
	if !ok {
		return
	}

	sess, err := h.service.GetOrCreate(c.Request.Context(), userID, otherID)
	if err != nil {
		fail(c, err)
		return
	}
	peer, err := h.directory.GetProfile(c.Request.Context(), otherID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromSessionWithPeer(sess, peer)))
}

func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]httpdto.SessionResponse, 0, len(items))
	for _, item := range items {
		out = append(out, httpdto.FromSessionWithPeer(item.Session, item.Peer))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(out))
}

func (h *SessionHandler) Messages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httpdto.ListMessagesRequest
	if !bindQuery(c, &req) {
		return
	}

	msgs, err := h.service.Messages(c.Request.Context(), sessionID, userID, req.BeforeSeq, req.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessageSlice(msgs)))
}

func (h *SessionHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httpdto.SendSessionMessageRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), sessionID, userID, req.Text, req.Image)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}

func (h *SessionHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	other, err := h.service.Delete(c.Request.Context(), sessionID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.DeleteSessionResponse{
		SessionID:     sessionID,
		ParticipantID: other,
	}))
}

package handler

import (
	"net/http"

	"driftchat/internal/services"
	"driftchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List handles GET /recent-activity
func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]httpdto.ActivityResponse, 0, len(items))
	for _, item := range items {
		out = append(out, httpdto.FromActivity(item.Entry, item.OtherParty))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(out))
}

// MarkRead handles POST /recent-activity/:id/read
func (h *ActivityHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), userID, conversationID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MarkReadResponse{ConversationID: conversationID}))
}

// ActiveChats handles GET /active-chats
func (h *ActivityHandler) ActiveChats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	peers, err := h.service.ActiveChats(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromProfileSlice(peers)))
}

package handler

import (
	"net/http"

	"driftchat/internal/services"
	"driftchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	service *services.RoomService
}

func NewRoomHandler(service *services.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// List handles GET /rooms?category=
func (h *RoomHandler) List(c *gin.Context) {
	var req httpdto.ListRoomsRequest
	if !bindQuery(c, &req) {
		return
	}
	rooms, err := h.service.List(c.Request.Context(), req.Category)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRoomSummarySlice(rooms)))
}

func (h *RoomHandler) Get(c *gin.Context) {
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	room, err := h.service.Get(c.Request.Context(), roomID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRoomSummary(room)))
}

func (h *RoomHandler) Participants(c *gin.Context) {
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	profiles, err := h.service.Participants(c.Request.Context(), roomID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromProfileSlice(profiles)))
}

// Mine handles GET /me/rooms
func (h *RoomHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ids, err := h.service.RoomIDsForUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(ids))
}

func (h *RoomHandler) Join(c *gin.Context) {
	h.membership(c, true)
}

func (h *RoomHandler) Leave(c *gin.Context) {
	h.membership(c, false)
}

func (h *RoomHandler) membership(c *gin.Context, join bool) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var err error
	if join {
		err = h.service.Join(c.Request.Context(), roomID, userID)
	} else {
		err = h.service.Leave(c.Request.Context(), roomID, userID)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.RoomMembershipResponse{RoomID: roomID, Joined: join}))
}

func (h *RoomHandler) Messages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httpdto.ListMessagesRequest
	if !bindQuery(c, &req) {
		return
	}

	msgs, err := h.service.Messages(c.Request.Context(), roomID, userID, req.BeforeSeq, req.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessageSlice(msgs)))
}

func (h *RoomHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httpdto.SendRoomMessageRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), roomID, userID, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}

package handler

import (
	"net/http"

	"driftchat/internal/services"
	"driftchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type BlockHandler struct {
	service *services.BlockService
}

func NewBlockHandler(service *services.BlockService) *BlockHandler {
	return &BlockHandler{service: service}
}

// Block handles POST /blocks/:id
func (h *BlockHandler) Block(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	blockedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httpdto.BlockUserRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	b, err := h.service.Block(c.Request.Context(), userID, blockedID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromBlock(b)))
}

func (h *BlockHandler) Unblock(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	blockedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Unblock(c.Request.Context(), userID, blockedID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"blocked_id": blockedID}))
}

func (h *BlockHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]httpdto.BlockResponse, 0, len(items))
	for _, item := range items {
		out = append(out, httpdto.FromBlockWithProfile(item.Block, item.Blocked))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(out))
}

// Report handles POST /reports/:id
func (h *BlockHandler) Report(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reportedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httpdto.ReportUserRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	r, err := h.service.Report(c.Request.Context(), userID, reportedID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromReport(r)))
}

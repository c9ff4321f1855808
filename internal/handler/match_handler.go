package handler

import (
	"net/http"

	"driftchat/internal/services"
	"driftchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	service *services.MatchService
}

func NewMatchHandler(service *services.MatchService) *MatchHandler {
	return &MatchHandler{service: service}
}

// Random handles GET /match/random
func (h *MatchHandler) Random(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	res, err := h.service.FindRandom(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MatchResponse{
		User:      httpdto.FromProfile(res.User),
		SessionID: res.Session.ID,
	}))
}

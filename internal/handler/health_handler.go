package handler

import (
	"context"
	"net/http"
	"time"

	"driftchat/internal/redis"
	"driftchat/internal/transport/httpdto"
	"driftchat/pkg/database"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ConnectionCounter is satisfied by the websocket hub.
type ConnectionCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	db          *gorm.DB
	redisClient *goredis.Client
	connections ConnectionCounter
}

// NewHealthHandler builds the health probe. redisClient and connections may
// be nil.
func NewHealthHandler(db *gorm.DB, redisClient *goredis.Client, connections ConnectionCounter) *HealthHandler {
	return &HealthHandler{db: db, redisClient: redisClient, connections: connections}
}

type HealthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Redis       string `json:"redis"`
	Connections int    `json:"connections"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	res := HealthResponse{Status: "ok", Database: "up", Redis: "disabled"}
	status := http.StatusOK

	if err := database.Ping(ctx, h.db); err != nil {
		res.Status = "degraded"
		res.Database = "down"
		status = http.StatusServiceUnavailable
	}
	if h.redisClient != nil {
		res.Redis = "up"
		if err := redis.Ping(ctx, h.redisClient); err != nil {
			res.Redis = "down"
			res.Status = "degraded"
		}
	}
	if h.connections != nil {
		res.Connections = h.connections.ClientCount()
	}

	c.JSON(status, httpdto.NewSuccessResponse(res))
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

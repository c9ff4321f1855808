package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"driftchat/config"
	"driftchat/internal/handler"
	"driftchat/internal/middleware"
	"driftchat/internal/redis"
	"driftchat/internal/services"
	"driftchat/internal/websocket"
	"driftchat/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	workers    []Worker
}

// Worker is a background loop started with the server and stopped on
// shutdown.
type Worker interface {
	Start(ctx context.Context)
}

func (s *Server) AddWorker(w Worker) {
	s.workers = append(s.workers, w)
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Session   *handler.SessionHandler
	Room      *handler.RoomHandler
	Match     *handler.MatchHandler
	Block     *handler.BlockHandler
	Activity  *handler.ActivityHandler
	Health    *handler.HealthHandler
	WebSocket *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowCredentials = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-Id")
	cfg.ExposeHeaders = []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
	return cfg
}

// SetupRoutes registers every route. limiter may be nil when Redis is off.
func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(cors.New(corsConfig(s.config.CORSOrigins)))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", handlers.Health.Ping)
	s.engine.GET("/health", handlers.Health.Health)
	s.engine.GET("/ws", handlers.WebSocket.Connect)

	api := s.engine.Group("/")
	api.Use(middleware.AuthMiddleware(authService))
	sendLimit := middleware.MessageRateLimitMiddleware(limiter)

	sessions := api.Group("/sessions")
	{
		sessions.GET("", handlers.Session.List)
		sessions.POST("/:id", handlers.Session.GetOrCreate)
		sessions.DELETE("/:id", handlers.Session.Delete)
		sessions.GET("/:id/messages", handlers.Session.Messages)
		sessions.POST("/:id/messages", sendLimit, handlers.Session.SendMessage)
	}

	rooms := api.Group("/rooms")
	{
		rooms.GET("", handlers.Room.List)
		rooms.GET("/:id", handlers.Room.Get)
		rooms.GET("/:id/participants", handlers.Room.Participants)
		rooms.POST("/:id/join", handlers.Room.Join)
		rooms.POST("/:id/leave", handlers.Room.Leave)
		rooms.GET("/:id/messages", handlers.Room.Messages)
		rooms.POST("/:id/messages", sendLimit, handlers.Room.SendMessage)
	}
	api.GET("/me/rooms", handlers.Room.Mine)

	api.GET("/match/random", handlers.Match.Random)

	blocks := api.Group("/blocks")
	{
		blocks.GET("", handlers.Block.List)
		blocks.POST("/:id", handlers.Block.Block)
		blocks.DELETE("/:id", handlers.Block.Unblock)
	}
	api.POST("/reports/:id", handlers.Block.Report)

	api.GET("/recent-activity", handlers.Activity.List)
	api.POST("/recent-activity/:id/read", handlers.Activity.MarkRead)
	api.GET("/active-chats", handlers.Activity.ActiveChats)
}

func (s *Server) Start() error {
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	for _, w := range s.workers {
		w.Start(workerCtx)
	}

	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit
	stopWorkers()

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}

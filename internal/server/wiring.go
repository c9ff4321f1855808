package server

import (
	"time"

	"driftchat/config"
	"driftchat/internal/handler"
	"driftchat/internal/redis"
	"driftchat/internal/repository"
	"driftchat/internal/services"
	"driftchat/internal/websocket"
	"driftchat/internal/worker"
	"driftchat/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies are the long-lived resources the server is built on. Redis is
// optional; without it there is no presence mirror, profile cache or message
// rate limit.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *gorm.DB
	Redis  *goredis.Client
}

// Build wires stores, services, the connection hub and handlers into a
// routed Server.
func Build(deps Dependencies) *Server {
	cfg := deps.Config
	l := deps.Logger
	if l == nil {
		l = logger.GetGlobalLogger()
	}

	store := repository.NewStore(deps.DB)
	var directory services.Directory = services.NewDirectory(store.Users)

	hubOpts := []websocket.HubOption{
		websocket.WithRoomMembership(store.Rooms),
		websocket.WithLogger(websocket.NewLogger(l)),
	}
	var limiter *redis.RateLimiter
	var presence *redis.PresenceStore
	presenceTTL := time.Duration(cfg.PresenceTTLSeconds) * time.Second
	if deps.Redis != nil {
		directory = redis.NewCachedDirectory(directory, deps.Redis, redis.CacheConfig{
			ProfileTTL: time.Duration(cfg.ProfileCacheTTLSeconds) * time.Second,
		})
		limiter = redis.NewRateLimiter(deps.Redis, redis.RateLimitConfig{
			MessageLimit:  cfg.MessageRateLimit,
			MessageWindow: time.Minute,
		})
		presence = redis.NewPresenceStore(deps.Redis, redis.NewPublisher(deps.Redis), presenceTTL)
		hubOpts = append(hubOpts, websocket.WithPresenceMirror(presence))
	}

	hub := websocket.NewHub(hubOpts...)
	dispatcher := websocket.NewDispatcher(hub)

	authService := services.NewAuthService(cfg)
	sessionService := services.NewSessionService(store, directory, dispatcher)
	roomService := services.NewRoomService(store, directory, dispatcher)
	activityService := services.NewActivityService(store, directory)
	blockService := services.NewBlockService(store, directory)
	matchService := services.NewMatchService(store, directory, sessionService, dispatcher, cfg.MatchExcludeExistingSessions)

	handlers := &Handlers{
		Session:  handler.NewSessionHandler(sessionService, directory),
		Room:     handler.NewRoomHandler(roomService),
		Match:    handler.NewMatchHandler(matchService),
		Block:    handler.NewBlockHandler(blockService),
		Activity: handler.NewActivityHandler(activityService),
		Health:   handler.NewHealthHandler(deps.DB, deps.Redis, hub),
		WebSocket: websocket.NewHandler(authService, hub,
			websocket.NewChannelAuthorizer(store.Sessions, store.Rooms),
			cfg.PushBufferSize, cfg.CORSOrigins),
	}

	srv := New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)
	if presence != nil {
		srv.AddWorker(worker.NewRunner(worker.DefaultRefresher(hub, presence, presenceTTL, l.Logger)))
	}
	return srv
}

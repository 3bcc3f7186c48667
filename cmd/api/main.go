package main

import (
	"context"
	"log"

	"askroom/internal/analytics"
	"askroom/internal/config"
	"askroom/internal/domain/identity"
	"askroom/internal/domain/question"
	"askroom/internal/domain/room"
	"askroom/internal/events"
	"askroom/internal/feed"
	"askroom/internal/handler"
	askredis "askroom/internal/redis"
	"askroom/internal/repository"
	"askroom/internal/server"
	"askroom/internal/services"
	"askroom/internal/websocket"
	"askroom/pkg/database"
	"askroom/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := db.AutoMigrate(
		&room.Room{},
		&question.Question{},
		&identity.Admin{},
		&identity.MagicLinkToken{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redisClient, err := askredis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	clock := clockwork.NewRealClock()

	roomRepo := repository.NewRoomRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	identityRepo := repository.NewIdentityRepository(db)

	var voteSink analytics.VoteSink = analytics.Nop{}
	if cfg.Analytics.Enabled {
		sink := analytics.NewKafkaVoteSink(cfg.Analytics.Brokers, cfg.Analytics.Topic)
		defer func() { _ = sink.Close() }()
		voteSink = sink
	}

	bus := events.NewRedisEventBus(redisClient, l)
	snapshots := feed.NewSnapshotFeed()
	hub := websocket.NewHub()
	bridge := feed.NewBridge(questionRepo, snapshots, l)
	bridge.Attach(bus)

	if err := bus.Start(); err != nil {
		log.Fatalf("Failed to start event bus: %v", err)
	}
	defer func() { _ = bus.Stop() }()

	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	go hub.Run(hubCtx)

	roomCache := askredis.NewRoomCache(redisClient)
	limiter := askredis.NewRateLimiter(redisClient, askredis.DefaultRateLimitConfig())

	authService := services.NewAuthService(identityRepo, services.LogMailer{Log: l}, cfg.Auth, clock)
	roomService := services.NewRoomService(roomRepo, roomCache, bus, clock, l)
	questionService := services.NewQuestionService(roomRepo, questionRepo, bus, voteSink, clock, l)

	handlers := &server.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Rooms:     handler.NewRoomHandler(roomService),
		Questions: handler.NewQuestionHandler(questionService),
		WS:        websocket.NewHandler(authService, roomService, bridge, snapshots, hub, l),
	}

	srv := server.New(cfg, l, db)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

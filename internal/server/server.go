package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"askroom/internal/config"
	"askroom/internal/handler"
	"askroom/internal/middleware"
	askredis "askroom/internal/redis"
	"askroom/internal/services"
	"askroom/internal/transport/httpdto"
	"askroom/internal/websocket"
	"askroom/pkg/database"
	"askroom/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	db         *gorm.DB
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Rooms     *handler.RoomHandler
	Questions *handler.QuestionHandler
	WS        *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger, db *gorm.DB) *Server {
	if cfg.Server.Mode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Mode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
		db:     db,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *askredis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(s.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authRequired := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/anonymous", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.Anonymous)
		auth.POST("/magic-link", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.RequestMagicLink)
		auth.POST("/magic-link/redeem", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.RedeemMagicLink)
	}

	rooms := s.engine.Group("/v1/rooms")
	{
		rooms.POST("", authRequired, handlers.Rooms.Create)
		rooms.GET("/mine", authRequired, handlers.Rooms.Mine)
		rooms.GET("/:code", handlers.Rooms.Get)

		rooms.GET("/:code/questions", handlers.Questions.List)
		rooms.POST("/:code/questions", authRequired, middleware.SubmitRateLimitMiddleware(limiter), handlers.Questions.Submit)

		rooms.POST("/:code/questions/:id/vote", authRequired, middleware.VoteRateLimitMiddleware(limiter), handlers.Questions.Vote)
		rooms.DELETE("/:code/questions/:id/vote", authRequired, middleware.VoteRateLimitMiddleware(limiter), handlers.Questions.Unvote)

		rooms.PATCH("/:code/questions/:id/pin", authRequired, handlers.Questions.SetPinned)
		rooms.PATCH("/:code/questions/:id/answer", authRequired, handlers.Questions.SetAnswered)
		rooms.DELETE("/:code/questions/:id", authRequired, handlers.Questions.Delete)
	}

	s.engine.GET("/ws", handlers.WS.Connect)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
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
		s.logger.Infof("Server is running on :%s", s.config.Server.Port)
	}

	<-quit

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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authapi "github.com/minitrello/minitrello/internal/auth/api"
	authrepo "github.com/minitrello/minitrello/internal/auth/repository"
	authservice "github.com/minitrello/minitrello/internal/auth/service"
	boardapi "github.com/minitrello/minitrello/internal/board/api"
	boardrepo "github.com/minitrello/minitrello/internal/board/repository"
	boardservice "github.com/minitrello/minitrello/internal/board/service"
	"github.com/minitrello/minitrello/internal/common/config"
	"github.com/minitrello/minitrello/internal/common/httpmw"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/events"
	"github.com/minitrello/minitrello/internal/github"
	githubapi "github.com/minitrello/minitrello/internal/github/api"
	"github.com/minitrello/minitrello/internal/mailer"
	"github.com/minitrello/minitrello/internal/relay"
	"github.com/minitrello/minitrello/internal/store"
	userapi "github.com/minitrello/minitrello/internal/user/api"
	userrepo "github.com/minitrello/minitrello/internal/user/repository"
	userservice "github.com/minitrello/minitrello/internal/user/service"
	ws "github.com/minitrello/minitrello/pkg/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting Mini Trello backend...")

	// 3. Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Event bus (NATS when configured, in-memory otherwise)
	provided, busCleanup, err := events.Provide(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize event bus", zap.Error(err))
	}
	defer busCleanup()
	eventBus := provided.Bus

	// 5. Open the database and create the schema
	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	log.Info("Database ready",
		zap.String("driver", cfg.Database.Driver))

	// 6. Repositories
	users := userrepo.NewSQLRepository(db)
	challenges := authrepo.NewSQLRepository(db)
	boards := boardrepo.NewSQLRepository(db)

	// 7. Services
	sender := mailer.Provide(cfg.SMTP, log)
	authSvc := authservice.NewService(challenges, users, sender, cfg.Auth, log)
	oauth := authservice.NewGitHubOAuth(cfg.GitHub)
	userSvc := userservice.NewService(users, log)
	boardSvc := boardservice.NewService(boards, eventBus, log)
	githubSvc := github.NewService(github.NewClient(), boardSvc, log)

	// 8. Websocket relay
	dispatcher := ws.NewDispatcher()
	relay.RegisterHealthHandler(dispatcher)
	hub := relay.NewHub(dispatcher, log)
	go hub.Run(ctx)

	bridge := relay.NewBridge(hub, log)
	if err := bridge.Start(eventBus); err != nil {
		log.Fatal("Failed to subscribe relay to event bus", zap.Error(err))
	}
	defer bridge.Stop()

	// 9. HTTP server with Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(log, "minitrello"))
	router.Use(httpmw.CORS(cfg.Frontend.URL))

	// 10. Register API routes
	apiGroup := router.Group("/api")
	authapi.SetupRoutes(apiGroup, authSvc, oauth, cfg.Frontend.URL, log)

	protected := apiGroup.Group("")
	protected.Use(authapi.AuthRequired(authSvc))
	userapi.SetupRoutes(protected, userSvc, log)
	boardapi.SetupRoutes(protected, boardSvc, log)
	githubapi.SetupRoutes(protected, githubSvc, log)

	wsHandler := relay.NewHandler(hub, authSvc, log)
	router.GET("/ws", wsHandler.HandleConnection)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "minitrello"})
	})

	// 11. Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// 12. Start server in goroutine
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 13. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Mini Trello backend...")

	// 14. Graceful shutdown
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Mini Trello backend stopped")
}

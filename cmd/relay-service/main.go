package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srujan5570/Communications-App/internal/auth"
	"github.com/srujan5570/Communications-App/internal/cache"
	"github.com/srujan5570/Communications-App/internal/config"
	"github.com/srujan5570/Communications-App/internal/handler"
	"github.com/srujan5570/Communications-App/internal/hub"
	"github.com/srujan5570/Communications-App/internal/kafka"
	"github.com/srujan5570/Communications-App/internal/ledger"
	"github.com/srujan5570/Communications-App/internal/presence"
	"github.com/srujan5570/Communications-App/internal/service"
	"github.com/srujan5570/Communications-App/pkg/database"
	"github.com/srujan5570/Communications-App/pkg/jwt"
	pkglog "github.com/srujan5570/Communications-App/pkg/log"
	"github.com/srujan5570/Communications-App/pkg/middleware"
)

func main() {
	issueFor := flag.String("issue-token", "", "print a signed token for the given user id and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenDuration)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	if *issueFor != "" {
		token, err := tokens.GenerateToken(*issueFor)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to issue token")
		}
		fmt.Println(token)
		return
	}

	if isDebugLevel(cfg.Log.Level) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting relay-service")

	// Initialize message ledger
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}

	var store ledger.Ledger
	store, err = ledger.NewGormLedger(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize message ledger")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("message ledger ready")

	if cfg.Redis.Enabled {
		historyCache, err := cache.NewRedisConversationCache(cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Str("address", cfg.Redis.Address).Msg("failed to connect to redis, history cache disabled")
		} else {
			store = ledger.NewCachedLedger(store, historyCache, cfg.Redis.CacheTTL)
			logger.Info().Str("address", cfg.Redis.Address).Msg("history cache enabled")
		}
	}

	// Initialize Kafka producer for message lifecycle events
	var producer kafka.EventProducer
	if cfg.Kafka.Enabled {
		p, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka producer, message events disabled")
		} else {
			producer = p
			logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("connected to kafka")
		}
	}

	// Initialize hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run(ctx)

	// Initialize services
	directory := presence.NewDirectory()
	verifier := auth.NewVerifier(tokens)

	connectionSvc := service.NewConnectionService(verifier, directory, cfg.Presence.Broadcast)
	messagingSvc := service.NewMessagingService(store, directory, producer, cfg.Messaging.MaxContentLength)
	signalingSvc := service.NewSignalingService(directory)

	// Initialize handlers
	wsHandler := handler.NewWSHandler(wsHub, connectionSvc, messagingSvc, signalingSvc)
	apiHandler := handler.NewHTTPHandler(messagingSvc, connectionSvc, cfg.WebRTC, middleware.NewAuthMiddleware(tokens))

	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler.NewRouter(logger, wsHandler, apiHandler),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("relay-service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down relay-service")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	// Hijacked WebSocket connections are not tracked by Shutdown; the hub
	// closes them with a going-away frame.
	cancel()
	select {
	case <-wsHub.Done():
	case <-shutdownCtx.Done():
		logger.Warn().Msg("timed out waiting for connections to close")
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close kafka producer")
		}
	}
	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close message ledger")
	}

	logger.Info().Msg("relay-service stopped")
}

func isDebugLevel(level string) bool {
	return level == "debug" || level == "trace"
}

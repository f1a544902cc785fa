package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mealtrace/mealtrace-bot/config"
	"github.com/mealtrace/mealtrace-bot/internal/api"
	"github.com/mealtrace/mealtrace-bot/internal/archive"
	"github.com/mealtrace/mealtrace-bot/internal/assoc"
	"github.com/mealtrace/mealtrace-bot/internal/bot"
	"github.com/mealtrace/mealtrace-bot/internal/chat"
	"github.com/mealtrace/mealtrace-bot/internal/convstate"
	"github.com/mealtrace/mealtrace-bot/internal/correction"
	"github.com/mealtrace/mealtrace-bot/internal/database"
	"github.com/mealtrace/mealtrace-bot/internal/goals"
	"github.com/mealtrace/mealtrace-bot/internal/interpreter"
	"github.com/mealtrace/mealtrace-bot/internal/leaderboard"
	"github.com/mealtrace/mealtrace-bot/internal/ledger"
	"github.com/mealtrace/mealtrace-bot/internal/router"
	"github.com/mealtrace/mealtrace-bot/internal/server"
	"github.com/mealtrace/mealtrace-bot/internal/service"
	"github.com/mealtrace/mealtrace-bot/internal/store"
	"github.com/mealtrace/mealtrace-bot/internal/summary"
	"github.com/mealtrace/mealtrace-bot/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	st, err := store.Open(cfg.StorageDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Storage error: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Redis error: %v", err)
	}

	visionService, err := vision.NewService()
	if err != nil {
		log.Fatalf("Vision service error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s3cfg, err := config.NewS3Config(ctx, cfg.PhotoBucket)
	if err != nil {
		log.Fatalf("S3 error: %v", err)
	}

	// Core services
	ledgerService := ledger.New(st)
	goalService := goals.New(st)
	assocIndex := assoc.New(st)
	interp := interpreter.New(nil)
	engine := correction.New(ledgerService, assocIndex, interp)
	names := bot.NewNameRegistry(st)
	board := leaderboard.NewService(ledgerService, goalService, names)
	dialogs := convstate.NewRedisStore(redisClient, 0)

	// Chat wiring
	transport := chat.NewOutboundTransport(cfg.ChatCallbackURL, cfg.ChatRelayToken)
	handler := bot.NewHandler(
		transport,
		visionService,
		ledgerService,
		goalService,
		assocIndex,
		engine,
		dialogs,
		archive.New(s3cfg),
		names,
		board,
	)
	webhook := chat.NewWebhook(handler, cfg.ChatRelayToken)

	// Daily summary scheduler
	summaryService := summary.New(ledgerService, goalService, transport)
	go summaryService.RunDaily(ctx, cfg.SummaryHour)

	// Dashboard
	authService := service.NewAuthService(cfg.JWTSecret, cfg.AdminPasswordHash)
	apiHandler := api.NewHandler(authService, board, ledgerService, goalService, st, redisClient)
	srv := server.New(router.SetupRouter(apiHandler, webhook, authService), cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

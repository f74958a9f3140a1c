// Quotebot - voice/text applicant intake server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quotebot/internal/api"
	"quotebot/internal/calls"
	"quotebot/internal/channel"
	"quotebot/internal/config"
	"quotebot/internal/decision"
	"quotebot/internal/dialog"
	"quotebot/internal/middleware"
	"quotebot/internal/speech"
	"quotebot/internal/store"
	"quotebot/internal/transport"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "collect_last_name", cfg.CollectLastName)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Speech synthesis is optional; without a key the bot answers in
	// text only.
	var synthesizer speech.Synthesizer
	if cfg.SpeechKey != "" {
		google, err := speech.NewGoogleSynthesizer(ctx, cfg.SpeechKey, cfg.SpeechLanguage, cfg.HTTPTimeout)
		if err != nil {
			slog.Error("Failed to initialize speech synthesizer", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := google.Close(); closeErr != nil {
				slog.Error("Failed to close speech synthesizer", "error", closeErr)
			}
		}()
		synthesizer = google
		slog.Info("Speech synthesis enabled", "language", cfg.SpeechLanguage)
	} else {
		slog.Info("Speech synthesis disabled (SPEECH_KEY not set)")
	}

	connector := transport.NewConnector(cfg.AppID, cfg.AppPassword, cfg.HTTPTimeout)
	out := channel.New(connector, synthesizer)

	decisions := decision.New(cfg.DecisionURL, cfg.HTTPTimeout)
	machine := dialog.NewMachine(decisions, cfg.CollectLastName)
	dialogService := dialog.NewService(repo, machine, out)

	var player calls.Player
	if cfg.CallAutomation.Endpoint != "" {
		player = calls.NewClient(cfg.CallAutomation.Endpoint, cfg.CallAutomation.AccessKey, cfg.HTTPTimeout)
		slog.Info("Call automation enabled", "endpoint", cfg.CallAutomation.Endpoint)
	} else {
		slog.Info("Call automation disabled (ACS_CONNECTION_STRING not set)")
	}
	greeter := calls.NewGreeter(player, dialog.Greeting)

	handler := api.NewHandler(dialogService, greeter)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start stale-session cleanup.
	store.StartCleanupWorker(ctx, repo, cfg.SessionTTL, time.Hour)
	slog.Info("Session cleanup worker started", "session_ttl", cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lwouters/profile-assistant/backend/internal/config"
	"github.com/lwouters/profile-assistant/backend/internal/handler"
	"github.com/lwouters/profile-assistant/backend/internal/metrics"
	"github.com/lwouters/profile-assistant/backend/internal/middleware"
	"github.com/lwouters/profile-assistant/backend/internal/model/profile"
	"github.com/lwouters/profile-assistant/backend/internal/service/ai"
	"github.com/lwouters/profile-assistant/backend/internal/service/archive"
	"github.com/lwouters/profile-assistant/backend/internal/service/room"
	"github.com/lwouters/profile-assistant/backend/internal/service/turn"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	profileStore := profile.NewMemoryStore(profile.Seed())
	messageStore := room.NewStore()

	var aiClient *ai.Client
	var generator turn.Generator = turn.DisabledGenerator{}
	if cfg.AI.Enabled() {
		aiClient, err = ai.NewClient(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize generation client: %v", err)
			log.Println("continuing without generation - check the ARK_* environment variables")
		} else {
			generator = aiClient
			log.Println("generation client initialized successfully")
		}
	} else {
		log.Println("generation backend credentials not configured, turns will fail gracefully")
	}

	var turnArchive turn.Archiver
	if cfg.Archive.Enabled() {
		a, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			log.Fatalf("failed to open transcript archive: %v", err)
		}
		defer a.Close()
		turnArchive = a
	} else {
		log.Println("transcript archive disabled, set ARCHIVE_PATH to enable")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	orchestrator := turn.NewOrchestrator(messageStore, generator, turnArchive, turn.NewSignals(), m)

	opts := handler.Options{}
	if cfg.RateLimit.Enabled() {
		opts.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		log.Printf("rate limiting enabled: %.1f rps, burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	router := handler.NewRouter(profileStore, messageStore, orchestrator, aiClient, opts)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Profile Assistant backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

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

	"github.com/vchat-labs/vchat/backend/internal/config"
	"github.com/vchat-labs/vchat/backend/internal/handler"
	"github.com/vchat-labs/vchat/backend/internal/model/persona"
	"github.com/vchat-labs/vchat/backend/internal/observability"
	"github.com/vchat-labs/vchat/backend/internal/service/conversation"
	"github.com/vchat-labs/vchat/backend/internal/service/generation"
	"github.com/vchat-labs/vchat/backend/internal/service/recording"
	"github.com/vchat-labs/vchat/backend/internal/service/synthesis"
	"github.com/vchat-labs/vchat/backend/internal/service/transcription"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	metrics := observability.NewMetrics("vchat")

	generationSvc, err := generation.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize completion backend: %v", err)
	}
	if generationSvc.Enabled() {
		log.Println("completion backend initialized successfully")
	} else {
		log.Println("completion credential not configured, chat turns will report a configuration error")
	}

	var recognizer transcription.Recognizer
	var speechBackend synthesis.Synthesizer
	if cfg.Speech.Enabled() {
		recognizer = transcription.NewClient(cfg.Speech)
		speechBackend = synthesis.NewClient(cfg.Speech)
		log.Println("speech backends initialized successfully")
	} else {
		log.Println("speech credential not configured, transcription and synthesis run in simulated mode")
	}

	transcriptionGw := transcription.NewGateway(recognizer)
	synthesisGw := synthesis.NewGateway(speechBackend)

	conversations := conversation.NewService(personaStore, generationSvc, transcriptionGw, synthesisGw, metrics)
	recordings := recording.NewTracker()

	router := handler.NewRouter(personaStore, conversations, recordings, transcriptionGw, synthesisGw)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("vchat backend listening on %s", addr)
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

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	"github.com/mind-engage/mindengage-quiz/internal/catalog"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/logging"
	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
	"github.com/mind-engage/mindengage-quiz/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.FromEnv()

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	cat, err := catalog.FromFileOrDefault(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	client := quizapi.New(quizapi.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger,
	})

	// The quiz service may come up after us; only warn.
	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Health(probeCtx); err != nil {
		logger.Warn("quiz service not reachable", "url", cfg.APIBaseURL, "err", err)
	}
	cancel()

	ctl := session.NewController(client, cat, session.WithLogger(logger))
	h := api.NewRouter(ctl, api.RouterConfig{
		CORSOrigins:  cfg.CORSOrigins,
		AccessLog:    cfg.AccessLog,
		MissingLimit: cfg.MissingKeywordsLimit,
		Ready:        client.Health,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr, "quiz_api", cfg.APIBaseURL, "categories", cat.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

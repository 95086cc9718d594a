package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/mind-engage/mindengage-quiz/internal/catalog"
	"github.com/mind-engage/mindengage-quiz/internal/cli"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/logging"
	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
	"github.com/mind-engage/mindengage-quiz/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// Logs would interleave with the prompt; keep them off unless asked for.
	var logOut io.Writer = io.Discard
	if os.Getenv("LOG_LEVEL") != "" {
		logOut = os.Stderr
	}
	log.SetFlags(0)
	logger := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)

	cat, err := catalog.FromFileOrDefault(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	client := quizapi.New(quizapi.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout, Logger: logger})
	probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := client.Health(probeCtx); err != nil {
		log.Printf("warning: quiz service not reachable at %s: %v", cfg.APIBaseURL, err)
	}
	cancel()

	ctl := session.NewController(client, cat, session.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("quiz service: %s (type 'help' for commands)", cfg.APIBaseURL)
	if err := cli.New(ctl, os.Stdout, cfg.MissingKeywordsLimit).Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

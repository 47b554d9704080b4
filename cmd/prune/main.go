package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"framepruner/internal/app"
	"framepruner/internal/config"
)

func main() {
	cfg := config.Load()
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		flag.Usage()
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	runErr := application.Run(ctx)
	if err := application.Close(); err != nil {
		log.Printf("Failed to close: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Run failed: %v", runErr)
	}
}

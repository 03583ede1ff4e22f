// Package main runs the study layer HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/berea-labs/study_layer/internal/app/runtime"
	"github.com/berea-labs/study_layer/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to config/study_layer.yaml)")
	flag.Parse()

	// Local development convenience; absence is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	appl, err := runtime.NewApplicationWithConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialise application: %v\n", err)
		os.Exit(1)
	}

	if err := appl.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	if err := appl.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.LoadOrDefault()
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dmarkov/docuchat/internal/adapters/cli"
	"github.com/dmarkov/docuchat/internal/bootstrap"
	"github.com/dmarkov/docuchat/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewGuest(cfg)

	if cfg.MetricsPort != "" {
		go func() {
			addr := ":" + cfg.MetricsPort
			if err := http.ListenAndServe(addr, app.Metrics.Handler()); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server error: %v", err)
			}
		}()
	}

	surface := cli.NewGuest(app, os.Stdin, os.Stdout)
	if err := surface.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("guest error: %v", err)
	}
}

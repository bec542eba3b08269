package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/haiminh-dev/visadossier/internal/adapters/mcp"
	"github.com/haiminh-dev/visadossier/internal/bootstrap"
	"github.com/haiminh-dev/visadossier/internal/config"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()
	// The stdio tool process runs every step inline; no job queue.
	cfg.NATSEnabled = false

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "mcp")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(app.Pipeline, app.Pipeline, app.Pipeline, app.Bookings, app.Bookings).MCPServer(version)
	if err := server.ServeStdio(srv); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}

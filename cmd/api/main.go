package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/haiminh-dev/visadossier/internal/adapters/http"
	"github.com/haiminh-dev/visadossier/internal/bootstrap"
	"github.com/haiminh-dev/visadossier/internal/config"
	"github.com/haiminh-dev/visadossier/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "api")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(httpadapter.RouterOptions{
		Pipeline: app.Pipeline,
		Absorber: app.Pipeline,
		Reader:   app.Pipeline,
		Planner:  app.Bookings,
		Bookings: app.Bookings,
		Renderer: app.Renderer,

		Queue:   app.Queue,
		Metrics: metrics.NewHTTPServerMetrics("api"),

		Service:     "api",
		RateRPS:     cfg.APIRateRPS,
		RateBurst:   cfg.APIRateBurst,
		MaxInFlight: cfg.APIMaxInFlight,
	})
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}

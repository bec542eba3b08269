package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haiminh-dev/visadossier/internal/bootstrap"
	"github.com/haiminh-dev/visadossier/internal/config"
	"github.com/haiminh-dev/visadossier/internal/core/domain"
	"github.com/haiminh-dev/visadossier/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if app.Queue == nil {
		log.Fatal("worker requires NATS_ENABLED=true")
	}

	workerMetrics := metrics.NewWorkerMetrics("worker")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", workerMetrics.Handler())
		log.Printf("worker metrics on :%s", cfg.WorkerMetricsPort)
		if err := http.ListenAndServe(":"+cfg.WorkerMetricsPort, mux); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribePipelineRun(ctx, func(handlerCtx context.Context, job domain.PipelineJob) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartJob()
		started := time.Now()
		var runErr error
		if job.Step == "" {
			_, runErr = app.Pipeline.RunAll(runCtx, job.Force)
		} else {
			_, runErr = app.Pipeline.RunStep(runCtx, job.Step, job.Force)
		}
		workerMetrics.FinishJob("worker", string(job.Step), time.Since(started), runErr)
		return runErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smukkama/iot-temp-monitor/internal/blobstore"
	"github.com/smukkama/iot-temp-monitor/internal/logging"
	"github.com/smukkama/iot-temp-monitor/internal/pipeline"
	"github.com/smukkama/iot-temp-monitor/internal/source"
	"github.com/smukkama/iot-temp-monitor/internal/timer"
	"github.com/smukkama/iot-temp-monitor/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Init(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format == "json")

	remote, closeRemote := newRemote(cfg)
	defer closeRemote()

	resolver := source.NewResolver(remote, cfg.Remote.ObjectKey, cfg.DataFile, logging.Component("resolver"))
	p := pipeline.New(resolver, time.Now, logging.Component("pipeline"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Report.Interval == 0 {
		report, err := p.Run(ctx)
		Render(os.Stdout, report, err)
		return
	}

	fmt.Println("Starting Temperature Report Service...")

	timerManager := timer.NewTimerManager()
	timerManager.Start()
	defer timerManager.Stop()

	scheduleReport(ctx, timerManager, p, cfg.Report.Interval)

	fmt.Printf("✓ Reporting every %s\n", cfg.Report.Interval)
	fmt.Println("✓ Press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")
}

// newRemote builds the configured blob store, or nil when the selected
// backend is missing connection parameters.
func newRemote(cfg *config.Config) (blobstore.Downloader, func()) {
	if !cfg.Remote.Enabled(cfg.Redis) {
		return nil, func() {}
	}

	switch cfg.Remote.Backend {
	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			ReadTimeout: cfg.Remote.Timeout,
		})
		return blobstore.NewRedisStore(redisClient, cfg.Remote.Bucket), func() { redisClient.Close() }
	default:
		store := blobstore.NewSupabaseStore(cfg.Remote.SupabaseURL, cfg.Remote.SupabaseKey,
			cfg.Remote.Bucket, cfg.Remote.Timeout)
		return store, func() {}
	}
}

func scheduleReport(ctx context.Context, tm *timer.TimerManager, p *pipeline.Pipeline, interval time.Duration) {
	taskID := "report"

	var scheduleNext func(at time.Time)
	scheduleNext = func(at time.Time) {
		callback := func() {
			if ctx.Err() != nil {
				return
			}
			report, err := p.Run(ctx)
			Render(os.Stdout, report, err)

			if ctx.Err() == nil {
				scheduleNext(time.Now().Add(interval))
			}
		}

		if err := tm.Schedule(taskID, at, callback); err != nil {
			log.Printf("Failed to schedule report: %v\n", err)
		}
	}

	scheduleNext(time.Now())
}

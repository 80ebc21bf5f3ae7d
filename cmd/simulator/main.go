package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/smukkama/iot-temp-monitor/internal/generator"
	"github.com/smukkama/iot-temp-monitor/internal/logging"
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

	fmt.Println("Starting Sensor Simulator...")

	timerManager := timer.NewTimerManager()
	timerManager.Start()
	defer timerManager.Stop()

	gen := generator.New(cfg.DataFile, generator.Options{
		Interval: cfg.Generator.Interval,
		Console:  os.Stdout,
		Logger:   logging.Component("generator"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("✓ Simulator is running, writing to %s every %s\n", cfg.DataFile, cfg.Generator.Interval)
	fmt.Println("✓ Press Ctrl+C to stop")

	if err := gen.Run(ctx, timerManager); err != nil {
		timerManager.Stop()
		log.Fatalf("Simulator stopped: %v", err)
	}

	fmt.Println("\nShutting down gracefully...")
}

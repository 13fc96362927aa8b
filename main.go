package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"moodlens/internal"
	"moodlens/internal/config"
	"moodlens/internal/container"
	"moodlens/internal/metrics"
	"moodlens/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLoggerWithFormat(internal.ParseLogLevel(appConfig.Log.Level), appConfig.Log.Format)
	defer logger.Sync()

	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, appConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize container: %v", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := c.Load(ctx); err != nil {
		logger.Error("Failed to load data: %v", err)
		os.Exit(1)
	}

	pages, err := ui.DefaultPages()
	if err != nil {
		logger.Error("Failed to render pages: %v", err)
		os.Exit(1)
	}

	var routeMetrics *metrics.Collector
	if appConfig.Server.MetricsEnabled {
		routeMetrics = c.Metrics
	}

	server := ui.NewServer(c.Service, pages, routeMetrics, logger)
	if err := server.Run(ctx, appConfig.Addr(), appConfig.Server.ReadTimeout); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

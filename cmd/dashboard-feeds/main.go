package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/dashboard-feeds/internal/api/http"
	"github.com/i474232898/dashboard-feeds/internal/config"
	"github.com/i474232898/dashboard-feeds/internal/feeds"
	"github.com/i474232898/dashboard-feeds/internal/feeds/sources"
	"github.com/i474232898/dashboard-feeds/internal/scheduler"
)

func main() {
	// Load configuration (reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound feed calls.
	httpCfg := sources.HTTPClientConfig{
		Client:    &http.Client{Timeout: cfg.HTTPTimeout},
		UserAgent: cfg.UserAgent,
	}

	var geocodeSource feeds.GeocodeSource
	switch cfg.GeocoderProvider {
	case config.GeocoderGoogle:
		geocodeSource = sources.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
	default:
		geocodeSource = sources.NewNominatimGeocoder(httpCfg, cfg.NominatimBaseURL)
	}
	stopMonitoring := sources.NewIDFMStopMonitoring(httpCfg, cfg.IDFMBaseURL, cfg.IDFMAPIKey, cfg.TransitMonitoringRef, cfg.TransitLineRef)
	airQuality := sources.NewWAQIAirQuality(httpCfg, cfg.WAQIBaseURL, cfg.WAQIToken)

	// Scheduler owning the pollers' repeating tasks.
	sched := scheduler.New()
	sched.Start()
	defer sched.Stop()

	dashboard := feeds.NewDashboard(
		feeds.NewGeocodeResolver(geocodeSource, cfg.FetchTimeout),
		feeds.NewTransitArrivalsPoller(stopMonitoring, sched, cfg.FetchTimeout),
		feeds.NewAirQualityPoller(airQuality, sched, cfg.AirQualityDefaultCity, cfg.FetchTimeout),
	)
	if err := dashboard.Start(""); err != nil {
		log.Fatalf("failed to start pollers: %v", err)
	}
	defer dashboard.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "dashboard-feeds",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.FetchTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "dashboard-feeds",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, dashboard)

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"archive-twin/internal/ai/gemini"
	"archive-twin/internal/config"
	"archive-twin/internal/database/influxdb"
	"archive-twin/internal/database/redis"
	"archive-twin/internal/handlers"
	"archive-twin/internal/registry"
	"archive-twin/internal/services"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("log", "archive_twin_api")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Error setting up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()
	ctx := context.Background()

	influx := influxdb.NewClient(cfg.InfluxDB)
	defer influx.Close()

	var store services.SettingsStore
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Redis unavailable, automation settings will not persist: %v", err)
		} else {
			defer redisClient.Close()
			store = redisClient
		}
	}

	var ai services.InsightGenerator
	if cfg.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Printf("Gemini client unavailable, insights fall back to rules: %v", err)
		} else {
			defer geminiClient.Close()
			ai = geminiClient
		}
	}

	reg := registry.New(cfg.SensorPoller.DeviceCSVPath)
	if _, _, err := reg.Load(); err != nil {
		log.Printf("Device registry not loaded yet: %v", err)
	}

	automation := services.NewAutomationService(ctx, store)
	trends := services.NewTrendService(influx, cfg.InfluxDB.SensorBucket)
	rooms := services.NewRoomService(influx, cfg.InfluxDB.SensorBucket, automation, services.StaticDeviceProvider{})
	svc := handlers.Services{
		Stats:          services.NewStatsService(influx, cfg.InfluxDB.SensorBucket),
		Trends:         trends,
		Data:           services.NewDataService(influx, cfg.InfluxDB.SensorBucket, cfg.InfluxDB.BMKGBucket, cfg.BMKG.KodeWilayah),
		Rooms:          rooms,
		Automation:     automation,
		Recommendation: services.NewRecommendationService(rooms, trends, automation),
		Insights:       services.NewInsightService(trends, ai),
		Health:         services.NewHealthService(reg, influx, services.SystemPinger{Timeout: cfg.Health.PingTimeout}, cfg.Health.CacheTTL),
	}

	router := handlers.NewRouter(cfg.Server, svc)

	log.Printf("Starting archive-twin API on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

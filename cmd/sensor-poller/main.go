package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"archive-twin/internal/config"
	"archive-twin/internal/database/influxdb"
	"archive-twin/internal/poller"
	"archive-twin/internal/registry"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("log", "archive_twin_sensor_poller")
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

	influx := influxdb.NewClient(cfg.InfluxDB)
	defer influx.Close()

	reg := registry.New(cfg.SensorPoller.DeviceCSVPath)
	if devices, _, err := reg.Load(); err != nil {
		log.Printf("Device registry not loaded yet, will retry each cycle: %v", err)
	} else {
		log.Printf("Loaded %d devices from %s", len(devices), cfg.SensorPoller.DeviceCSVPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting sensor poller, interval %s", cfg.SensorPoller.PollInterval)
	poller.NewSensorPoller(reg, influx, cfg.SensorPoller).Run(ctx)
	log.Println("Sensor poller stopped")
}

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

	"github.com/robfig/cron/v3"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("log", "archive_twin_bmkg_collector")
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

	collector := poller.NewBMKGCollector(influx, cfg.BMKG)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One collection at boot so the forecast bucket is never empty
	// until the first scheduled run.
	if err := collector.Collect(ctx); err != nil {
		log.Printf("Initial BMKG collection failed: %v", err)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.BMKG.CronSpec, collector.Job); err != nil {
		log.Fatalf("Invalid BMKG cron spec %q: %v", cfg.BMKG.CronSpec, err)
	}
	scheduler.Start()
	log.Printf("BMKG collector scheduled with spec %q for wilayah %s", cfg.BMKG.CronSpec, cfg.BMKG.KodeWilayah)

	<-ctx.Done()
	cronCtx := scheduler.Stop()
	<-cronCtx.Done()
	log.Println("BMKG collector stopped")
}

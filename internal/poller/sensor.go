// Package poller contains the two acquisition loops: the LAN sensor
// poller and the BMKG forecast collector.
package poller

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"archive-twin/internal/config"
	"archive-twin/internal/database/influxdb"
	"archive-twin/internal/models"
	"archive-twin/internal/registry"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// SensorPoller fans out over the registry every cycle and writes one
// point per successful probe.
type SensorPoller struct {
	registry   *registry.Registry
	db         *influxdb.Client
	httpClient *http.Client
	interval   time.Duration
	busy       atomic.Bool
}

func NewSensorPoller(reg *registry.Registry, db *influxdb.Client, cfg config.SensorPollerConfig) *SensorPoller {
	return &SensorPoller{
		registry:   reg,
		db:         db,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		interval:   cfg.PollInterval,
	}
}

// Run polls until ctx is cancelled. A cycle that is still in flight when
// the next tick fires is not stacked; the tick is dropped.
func (p *SensorPoller) Run(ctx context.Context) {
	log.Printf("Sensor poller started, interval %s", p.interval)
	p.pollCycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("Sensor poller stopped")
			return
		case <-ticker.C:
			if !p.busy.CompareAndSwap(false, true) {
				log.Printf("Previous poll cycle still running, skipping tick")
				continue
			}
			p.pollCycle(ctx)
			p.busy.Store(false)
		}
	}
}

func (p *SensorPoller) pollCycle(ctx context.Context) {
	devices, changed, err := p.registry.Load()
	if err != nil {
		log.Printf("Device registry load failed: %v", err)
		devices = p.registry.Devices()
	} else if changed {
		log.Printf("Device registry changed, now %d loggers", len(devices))
	}
	if len(devices) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, d := range devices {
		wg.Add(1)
		go func(d models.Device) {
			defer wg.Done()
			p.pollDevice(ctx, d)
		}(d)
	}
	wg.Wait()
}

func (p *SensorPoller) pollDevice(ctx context.Context, d models.Device) {
	url := fmt.Sprintf("http://%s/", d.IP)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("[Device: %s] Bad request URL %s: %v", d.IP, url, err)
		return
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("[Device: %s] Fetch failed: %v", d.IP, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Device: %s] Unexpected status %d", d.IP, resp.StatusCode)
		return
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		log.Printf("[Device: %s] Read failed: %v", d.IP, err)
		return
	}

	reading, err := ParsePayload(string(body))
	if err != nil {
		log.Printf("[Device: %s] Parse failed: %v", d.IP, err)
		return
	}
	reading.DeviceID = d.ID
	reading.Location = d.Location
	reading.SourceIP = d.IP
	reading.Time = time.Now()

	point := influxdb2.NewPoint("sensor_reading",
		map[string]string{
			"device_id": reading.DeviceID,
			"location":  reading.Location,
			"source_ip": reading.SourceIP,
		},
		map[string]interface{}{
			"temperature": reading.Temperature,
			"humidity":    reading.Humidity,
			"status_hex":  reading.StatusHex,
		},
		reading.Time,
	)
	if err := p.db.WritePoint(ctx, p.db.SensorBucket, point); err != nil {
		log.Printf("[Device: %s] Write failed: %v", d.IP, err)
	}
}

// ParsePayload parses a logger response. The payload is
// "humidity#temperature#statusHex", optionally wrapped in an HTML body,
// e.g. "<meta...><body>46#22.20#2D303D</body>".
func ParsePayload(raw string) (models.SensorReading, error) {
	data := strings.TrimSpace(raw)
	if start := strings.Index(data, "<body>"); start != -1 {
		if end := strings.Index(data[start+len("<body>"):], "</body>"); end != -1 {
			data = strings.TrimSpace(data[start+len("<body>") : start+len("<body>")+end])
		}
	}

	parts := strings.Split(data, "#")
	if len(parts) != 3 {
		return models.SensorReading{}, fmt.Errorf("unexpected payload format %q", data)
	}
	humidity, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("parse humidity %q: %w", parts[0], err)
	}
	temperature, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("parse temperature %q: %w", parts[1], err)
	}
	if humidity < 0 || humidity > 100 {
		return models.SensorReading{}, fmt.Errorf("humidity %.1f out of range", humidity)
	}
	if temperature < -40 || temperature > 100 {
		return models.SensorReading{}, fmt.Errorf("temperature %.1f out of range", temperature)
	}

	return models.SensorReading{
		Humidity:    humidity,
		Temperature: temperature,
		StatusHex:   parts[2],
	}, nil
}

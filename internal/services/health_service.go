package services

import (
	"context"
	"errors"
	"log"
	"math"
	"net"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"archive-twin/internal/models"
)

// echoPort is probed over TCP when no ping binary is available.
const echoPort = "7"

// Pinger answers whether a device IP is reachable.
type Pinger interface {
	Reachable(ctx context.Context, ip string) bool
}

// SystemPinger shells out to the ping binary and falls back to a TCP
// connect on the echo port when ping is not installed.
type SystemPinger struct {
	Timeout time.Duration
}

func (p SystemPinger) Reachable(ctx context.Context, ip string) bool {
	seconds := int(p.Timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := exec.CommandContext(ctx, "ping", "-c", "1", "-W", strconv.Itoa(seconds), ip)
	err := cmd.Run()
	if err == nil {
		return true
	}
	if !errors.Is(err, exec.ErrNotFound) {
		return false
	}

	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip, echoPort))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// DeviceSource is the registry slice the health service consumes.
type DeviceSource interface {
	Load() (devices []models.Device, changed bool, err error)
	Devices() []models.Device
}

// SystemHealthReport is the /system/health/ payload.
type SystemHealthReport struct {
	Status             string  `json:"status"`
	ActiveDevices      int     `json:"active_devices"`
	TotalDevices       int     `json:"total_devices"`
	RatioActiveToTotal float64 `json:"ratio_active_to_total"`
	InfluxDBConnection string  `json:"influxdb_connection"`
}

type IHealthService interface {
	GetSystemHealth(ctx context.Context) SystemHealthReport
	GetDeviceStatuses(ctx context.Context) ([]models.DeviceStatus, error)
}

type healthService struct {
	registry DeviceSource
	db       Database
	pinger   Pinger
	cacheTTL time.Duration

	mu        sync.Mutex
	statuses  []models.DeviceStatus
	checkedAt time.Time
}

func NewHealthService(registry DeviceSource, db Database, pinger Pinger, cacheTTL time.Duration) IHealthService {
	return &healthService{
		registry: registry,
		db:       db,
		pinger:   pinger,
		cacheTTL: cacheTTL,
	}
}

func (s *healthService) GetSystemHealth(ctx context.Context) SystemHealthReport {
	influxOK := false
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			log.Printf("InfluxDB ping failed during health check: %v", err)
		} else {
			influxOK = true
		}
	}
	connection := "disconnected"
	if influxOK {
		connection = "connected"
	}

	statuses, err := s.refreshDeviceStatuses(ctx)
	if err != nil {
		log.Printf("Device status refresh failed during health check: %v", err)
	}

	total := len(statuses)
	active := 0
	for _, st := range statuses {
		if st.Reachable {
			active++
		}
	}

	report := SystemHealthReport{
		ActiveDevices:      active,
		TotalDevices:       total,
		InfluxDBConnection: connection,
	}
	if total == 0 {
		report.Status = "No Devices Configured"
		return report
	}

	ratio := float64(active) / float64(total)
	report.RatioActiveToTotal = math.Round(ratio*10000) / 10000

	switch {
	case ratio > 0.9:
		report.Status = "Optimal"
	case ratio >= 0.75:
		report.Status = "Good"
	case ratio >= 0.5:
		report.Status = "Warning"
	default:
		report.Status = "Critical"
	}
	// A broken store caps the verdict: data is being lost even when
	// every logger answers.
	if !influxOK && (report.Status == "Optimal" || report.Status == "Good") {
		report.Status = "Warning"
	}
	return report
}

func (s *healthService) GetDeviceStatuses(ctx context.Context) ([]models.DeviceStatus, error) {
	return s.refreshDeviceStatuses(ctx)
}

// refreshDeviceStatuses probes every registered logger, reusing the
// cached result while it is fresh and the logger ID set is unchanged.
func (s *healthService) refreshDeviceStatuses(ctx context.Context) ([]models.DeviceStatus, error) {
	devices, changed, err := s.registry.Load()
	if err != nil {
		log.Printf("Device registry reload failed, using cached list: %v", err)
		devices = s.registry.Devices()
	}

	s.mu.Lock()
	if !changed && s.statuses != nil && time.Since(s.checkedAt) < s.cacheTTL {
		cached := make([]models.DeviceStatus, len(s.statuses))
		copy(cached, s.statuses)
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	statuses := make([]models.DeviceStatus, len(devices))
	var wg sync.WaitGroup
	for i, device := range devices {
		wg.Add(1)
		go func(i int, device models.Device) {
			defer wg.Done()
			statuses[i] = models.DeviceStatus{
				DeviceID:    device.ID,
				Location:    device.Location,
				IP:          device.IP,
				Reachable:   s.pinger.Reachable(ctx, device.IP),
				LastChecked: time.Now(),
			}
		}(i, device)
	}
	wg.Wait()

	s.mu.Lock()
	s.statuses = statuses
	s.checkedAt = time.Now()
	s.mu.Unlock()

	out := make([]models.DeviceStatus, len(statuses))
	copy(out, statuses)
	return out, nil
}

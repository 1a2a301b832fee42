// Package registry loads the logger inventory from the operator-managed
// CSV file.
package registry

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"archive-twin/internal/models"
)

var requiredColumns = []string{"IP ADDRESS", "ID LOGGER", "LOKASI"}

// Registry caches the parsed device list and reports when the set of
// logger IDs changes between loads.
type Registry struct {
	path string

	mu      sync.RWMutex
	devices []models.Device
	idKey   string
}

func New(path string) *Registry {
	return &Registry{path: path}
}

// Load re-reads the CSV. Rows missing any of the three required values
// are dropped with a warning. The changed flag is true when the set of
// logger IDs differs from the previous load.
func (r *Registry) Load() (devices []models.Device, changed bool, err error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, false, fmt.Errorf("open device CSV %s: %w", r.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("read device CSV %s: %w", r.path, err)
	}
	if len(rows) == 0 {
		return nil, false, fmt.Errorf("device CSV %s is empty", r.path)
	}

	colIndex := map[string]int{}
	for i, name := range rows[0] {
		colIndex[strings.TrimSpace(strings.ToUpper(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, false, fmt.Errorf("device CSV %s missing column %q", r.path, col)
		}
	}

	devices = make([]models.Device, 0, len(rows)-1)
	for n, row := range rows[1:] {
		ip := cell(row, colIndex["IP ADDRESS"])
		id := cell(row, colIndex["ID LOGGER"])
		loc := cell(row, colIndex["LOKASI"])
		if ip == "" || id == "" || loc == "" {
			if ip != "" || id != "" || loc != "" {
				log.Printf("Device CSV row %d incomplete, skipping (ip=%q id=%q lokasi=%q)", n+2, ip, id, loc)
			}
			continue
		}
		devices = append(devices, models.Device{ID: id, IP: ip, Location: loc})
	}

	key := idKey(devices)
	r.mu.Lock()
	changed = key != r.idKey
	r.devices = devices
	r.idKey = key
	r.mu.Unlock()

	return devices, changed, nil
}

// Devices returns the last successfully loaded device list.
func (r *Registry) Devices() []models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Device, len(r.devices))
	copy(out, r.devices)
	return out
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func idKey(devices []models.Device) string {
	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"archive-twin/internal/config"
	"archive-twin/internal/database/influxdb"
	"archive-twin/internal/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const bmkgTimeLayout = "2006-01-02 15:04:05"

// defaultVisibilityKM is used when vs_text cannot be parsed. BMKG
// reports open-ended values like "> 10 km".
const defaultVisibilityKM = 10.0

// BMKGCollector fetches the public BMKG point forecast and writes the
// flattened entries into the forecast bucket.
type BMKGCollector struct {
	db         *influxdb.Client
	cfg        config.BMKGConfig
	httpClient *http.Client
}

func NewBMKGCollector(db *influxdb.Client, cfg config.BMKGConfig) *BMKGCollector {
	return &BMKGCollector{
		db:         db,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

type bmkgEntry struct {
	UTCDatetime   string  `json:"utc_datetime"`
	LocalDatetime string  `json:"local_datetime"`
	Temperature   float64 `json:"t"`
	Humidity      float64 `json:"hu"`
	TempPred      float64 `json:"tp"`
	CloudCover    float64 `json:"tcc"`
	WindSpeed     float64 `json:"ws"`
	WindDirection string  `json:"wd"`
	WindDirDegree float64 `json:"wd_deg"`
	WeatherDesc   string  `json:"weather_desc"`
	WeatherDescEN string  `json:"weather_desc_en"`
	VisibilityRaw string  `json:"vs_text"`
}

type bmkgResponse struct {
	Data []struct {
		Cuaca [][]bmkgEntry `json:"cuaca"`
	} `json:"data"`
}

// Collect runs one fetch-parse-write cycle. A malformed bundle skips the
// cycle and surfaces as an error so the scheduler can log it.
func (c *BMKGCollector) Collect(ctx context.Context) error {
	url := fmt.Sprintf("%s?adm4=%s", c.cfg.BaseURL, c.cfg.KodeWilayah)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build BMKG request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch BMKG forecast: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("BMKG returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read BMKG response: %w", err)
	}

	forecasts, err := ParseForecast(body)
	if err != nil {
		return err
	}

	points := make([]*write.Point, 0, len(forecasts))
	for _, f := range forecasts {
		points = append(points, forecastPoint(f, c.cfg.KodeWilayah))
	}
	if err := c.db.WritePoints(ctx, c.db.BMKGBucket, points); err != nil {
		return err
	}
	log.Printf("Wrote %d BMKG forecast points for %s", len(points), c.cfg.KodeWilayah)
	return nil
}

// Job is the cron entrypoint. Errors are logged, never fatal.
func (c *BMKGCollector) Job() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FetchTimeout+30*time.Second)
	defer cancel()
	if err := c.Collect(ctx); err != nil {
		log.Printf("BMKG collection cycle failed: %v", err)
	}
}

// ParseForecast flattens the nested day-lists under data[0].cuaca.
// Entries with a broken timestamp are skipped individually; an empty or
// malformed bundle fails the whole cycle.
func ParseForecast(raw []byte) ([]models.ForecastPoint, error) {
	var parsed bmkgResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode BMKG response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("BMKG response has no data element")
	}

	var out []models.ForecastPoint
	for _, day := range parsed.Data[0].Cuaca {
		for _, entry := range day {
			ts, err := time.ParseInLocation(bmkgTimeLayout, entry.UTCDatetime, time.UTC)
			if err != nil {
				log.Printf("Skipping forecast entry with bad timestamp %q: %v", entry.UTCDatetime, err)
				continue
			}
			out = append(out, models.ForecastPoint{
				Time:                  ts,
				LocalDatetime:         entry.LocalDatetime,
				WeatherDesc:           entry.WeatherDesc,
				WeatherDescEN:         entry.WeatherDescEN,
				WindDirection:         entry.WindDirection,
				Temperature:           entry.Temperature,
				Humidity:              entry.Humidity,
				TemperaturePrediction: entry.TempPred,
				CloudCover:            entry.CloudCover,
				WindSpeed:             entry.WindSpeed,
				WindDirectionDegree:   entry.WindDirDegree,
				VisibilityKM:          parseVisibility(entry.VisibilityRaw),
			})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no weather data points found in BMKG response")
	}
	return out, nil
}

// parseVisibility turns BMKG's "vs_text" values ("> 10 km", "8 km") into
// kilometres, defaulting when the text cannot be parsed.
func parseVisibility(raw string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "> ", ""), " km", ""))
	if cleaned == "" {
		return defaultVisibilityKM
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return defaultVisibilityKM
	}
	return v
}

func forecastPoint(f models.ForecastPoint, kodeWilayah string) *write.Point {
	return influxdb2.NewPoint("bmkg_weather_forecast",
		map[string]string{
			"source":          "bmkg",
			"kode_wilayah":    kodeWilayah,
			"local_datetime":  f.LocalDatetime,
			"weather_desc":    f.WeatherDesc,
			"weather_desc_en": f.WeatherDescEN,
			"wd":              f.WindDirection,
		},
		map[string]interface{}{
			"temperature":            f.Temperature,
			"humidity":               f.Humidity,
			"temperature_prediction": f.TemperaturePrediction,
			"tcc":                    f.CloudCover,
			"wind_speed":             f.WindSpeed,
			"wind_direction_degree":  f.WindDirectionDegree,
			"visibility_km":          f.VisibilityKM,
		},
		f.Time,
	)
}

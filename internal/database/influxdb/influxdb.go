package influxdb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"archive-twin/internal/config"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// ErrNotReady is returned when the InfluxDB connection cannot be reached.
// The serving layer maps it to 503.
var ErrNotReady = errors.New("influxdb not ready")

// Client wraps the InfluxDB v2 client with the bucket layout used by the
// twin: one bucket for sensor readings, one for BMKG forecasts.
type Client struct {
	client       influxdb2.Client
	queryAPI     api.QueryAPI
	org          string
	SensorBucket string
	BMKGBucket   string
	ready        atomic.Bool
}

func NewClient(cfg config.InfluxDBConfig) *Client {
	c := &Client{
		client:       influxdb2.NewClient(cfg.URL, cfg.Token),
		org:          cfg.Org,
		SensorBucket: cfg.SensorBucket,
		BMKGBucket:   cfg.BMKGBucket,
	}
	c.queryAPI = c.client.QueryAPI(cfg.Org)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ok, err := c.client.Ping(ctx); err != nil || !ok {
		log.Printf("InfluxDB at %s not reachable yet: %v", cfg.URL, err)
	} else {
		c.ready.Store(true)
		log.Printf("Connected to InfluxDB at %s (org %s)", cfg.URL, cfg.Org)
	}
	return c
}

// Ping re-probes the server and refreshes the ready flag.
func (c *Client) Ping(ctx context.Context) error {
	ok, err := c.client.Ping(ctx)
	if err != nil || !ok {
		c.ready.Store(false)
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	c.ready.Store(true)
	return nil
}

// Ready reports the last known connection state without probing.
func (c *Client) Ready() bool {
	return c.ready.Load()
}

func (c *Client) ensureReady(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}
	return c.Ping(ctx)
}

// WritePoint writes a single point synchronously.
func (c *Client) WritePoint(ctx context.Context, bucket string, p *write.Point) error {
	if err := c.ensureReady(ctx); err != nil {
		return err
	}
	if err := c.client.WriteAPIBlocking(c.org, bucket).WritePoint(ctx, p); err != nil {
		c.ready.Store(false)
		return fmt.Errorf("write point to %s: %w", bucket, err)
	}
	return nil
}

// WritePoints writes a batch of points synchronously.
func (c *Client) WritePoints(ctx context.Context, bucket string, pts []*write.Point) error {
	if len(pts) == 0 {
		return nil
	}
	if err := c.ensureReady(ctx); err != nil {
		return err
	}
	if err := c.client.WriteAPIBlocking(c.org, bucket).WritePoint(ctx, pts...); err != nil {
		c.ready.Store(false)
		return fmt.Errorf("write %d points to %s: %w", len(pts), bucket, err)
	}
	return nil
}

// Query runs a Flux query and returns the streaming table result.
func (c *Client) Query(ctx context.Context, flux string) (*api.QueryTableResult, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("flux query: %w", err)
	}
	return result, nil
}

// QueryRecords runs a Flux query and drains the result into plain maps,
// one per record. Each map holds the record's columns, including the
// yield name under "result".
func (c *Client) QueryRecords(ctx context.Context, flux string) ([]map[string]interface{}, error) {
	result, err := c.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	var records []map[string]interface{}
	for result.Next() {
		records = append(records, result.Record().Values())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("flux result: %w", err)
	}
	return records, nil
}

func (c *Client) Close() {
	c.client.Close()
}

package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/classloader/core/metrics"
	"github.com/kilianp07/classloader/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving loader events.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// Timeout bounds every HTTP request. Defaults to five seconds.
	Timeout time.Duration `json:"timeout"`
	// BatchSize is the number of points sent per request. Zero keeps the
	// client default.
	BatchSize uint `json:"batch_size"`
	// FlushInterval sends partial batches. Defaults to one second.
	FlushInterval time.Duration `json:"flush_interval"`
}

// InfluxRecorder writes loader events to an InfluxDB instance using the
// official client. Points are queued on the client's batching write API,
// so recording never waits on the network; write errors are logged.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	timeout  time.Duration
	log      logger.Logger
	once     sync.Once
}

var (
	_ coremetrics.MutationRecorder     = (*InfluxRecorder)(nil)
	_ coremetrics.RegistrySizeRecorder = (*InfluxRecorder)(nil)
	_ io.Closer                        = (*InfluxRecorder)(nil)
)

// NewInfluxRecorder creates a recorder for the given endpoint.
func NewInfluxRecorder(cfg InfluxConfig) *InfluxRecorder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	opts := influxdb2.DefaultOptions().
		SetHTTPClient(&http.Client{Timeout: cfg.Timeout}).
		SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	if cfg.BatchSize > 0 {
		opts = opts.SetBatchSize(cfg.BatchSize)
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token, opts)
	r := &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-recorder"),
	}
	errs := r.writeAPI.Errors()
	go func() {
		for err := range errs {
			r.log.Errorf("influx write: %v", err)
		}
	}()
	return r
}

// NewInfluxRecorderWithFallback pings the InfluxDB instance and returns a
// NopRecorder if the health check fails.
func NewInfluxRecorderWithFallback(cfg InfluxConfig) coremetrics.Recorder {
	rec := NewInfluxRecorder(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), rec.timeout)
	defer cancel()
	health, err := rec.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			rec.log.Errorf("influx health check error: %v", err)
		} else {
			rec.log.Errorf("influx health status: %s", health.Status)
		}
		_ = rec.Close()
		return coremetrics.NopRecorder{}
	}
	return rec
}

// Flush sends queued points and waits for the write to finish.
func (r *InfluxRecorder) Flush() { r.writeAPI.Flush() }

// Close flushes queued points and releases the client.
func (r *InfluxRecorder) Close() error {
	r.once.Do(func() {
		r.writeAPI.Flush()
		r.client.Close()
	})
	return nil
}

func (r *InfluxRecorder) write(p *write.Point) error {
	r.writeAPI.WritePoint(p)
	return nil
}

// RecordLookup writes a cache_lookup point.
func (r *InfluxRecorder) RecordLookup(ev coremetrics.LookupEvent) error {
	p := write.NewPointWithMeasurement("cache_lookup").
		AddTag("cache", ev.Cache).
		AddTag("outcome", ev.Outcome).
		AddField("key", ev.Key).
		SetTime(ev.Time)
	return r.write(p)
}

// RecordResolution writes a class_resolution point.
func (r *InfluxRecorder) RecordResolution(ev coremetrics.ResolutionEvent) error {
	p := write.NewPointWithMeasurement("class_resolution").
		AddTag("outcome", ev.Outcome)
	if ev.Namespace != "" {
		p = p.AddTag("namespace", ev.Namespace)
	}
	p = p.AddField("name", ev.Name).
		AddField("module", ev.Module).
		AddField("duration_us", ev.Duration.Microseconds()).
		SetTime(ev.Time)
	return r.write(p)
}

// RecordInvalidation writes a cache_invalidation point.
func (r *InfluxRecorder) RecordInvalidation(ev coremetrics.InvalidationEvent) error {
	p := write.NewPointWithMeasurement("cache_invalidation").
		AddTag("cache", ev.Cache).
		AddTag("reason", ev.Reason).
		AddField("entries", ev.Entries).
		SetTime(ev.Time)
	return r.write(p)
}

// RecordMutation writes a loader_mutation point.
func (r *InfluxRecorder) RecordMutation(ev coremetrics.MutationEvent) error {
	p := write.NewPointWithMeasurement("loader_mutation").
		AddTag("loader", ev.Loader).
		AddTag("kind", ev.Kind).
		AddField("subject", ev.Subject).
		SetTime(ev.Time)
	return r.write(p)
}

// RecordRegistrySize writes a registry_size point stamped with the
// current time.
func (r *InfluxRecorder) RecordRegistrySize(loader string, size int) error {
	p := write.NewPointWithMeasurement("registry_size").
		AddTag("loader", loader).
		AddField("modules", size).
		SetTime(time.Now())
	return r.write(p)
}

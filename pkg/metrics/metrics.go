// Package metrics exports extraction counters in Prometheus format.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/user/insvframe/pkg/pipeline"
	"github.com/user/insvframe/pkg/ports"
)

// Collector holds the extraction metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	containers *prometheus.CounterVec
	tracks     *prometheus.CounterVec
	duration   prometheus.Histogram
	reads      *prometheus.CounterVec
	readBytes  prometheus.Counter
}

// NewCollector creates a Collector registered on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		containers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insvframe_containers_processed_total",
			Help: "Total number of containers processed, by status",
		}, []string{"status"}),
		tracks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insvframe_tracks_total",
			Help: "Total number of tracks seen, by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "insvframe_container_duration_seconds",
			Help:    "Duration of single-container extraction",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		reads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insvframe_range_reads_total",
			Help: "Total number of range reads, by result",
		}, []string{"result"}),
		readBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "insvframe_range_read_bytes_total",
			Help: "Total number of bytes returned by range reads",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveContainer records a finished container. It satisfies batch.Observer.
func (c *Collector) ObserveContainer(item pipeline.BatchItem) {
	c.containers.WithLabelValues(string(item.Status)).Inc()
	for _, tr := range item.Result.Tracks {
		c.tracks.WithLabelValues(string(tr.Outcome)).Inc()
	}
	c.duration.Observe(item.Result.Duration.Seconds())
}

func (c *Collector) observeRead(n int, err error) {
	if err != nil {
		c.reads.WithLabelValues("error").Inc()
		return
	}
	c.reads.WithLabelValues("ok").Inc()
	c.readBytes.Add(float64(n))
}

// InstrumentedSource counts the reads made against a RangeSource. It
// forwards Size when the wrapped source supports it.
type InstrumentedSource struct {
	src       ports.RangeSource
	collector *Collector
}

// Instrument wraps src. The result implements ports.SizedSource only when
// src does, so callers keep their fallback behaviour for unsized sources.
func (c *Collector) Instrument(src ports.RangeSource) ports.RangeSource {
	is := &InstrumentedSource{src: src, collector: c}
	if _, ok := src.(ports.SizedSource); ok {
		return &instrumentedSizedSource{is}
	}
	return is
}

func (s *InstrumentedSource) ReadRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	data, err := s.src.ReadRange(ctx, key, offset, length)
	s.collector.observeRead(len(data), err)
	return data, err
}

func (s *InstrumentedSource) List(ctx context.Context, prefix string) ([]string, error) {
	return s.src.List(ctx, prefix)
}

type instrumentedSizedSource struct {
	*InstrumentedSource
}

func (s *instrumentedSizedSource) Size(ctx context.Context, key string) (int64, error) {
	return s.src.(ports.SizedSource).Size(ctx, key)
}

var (
	_ ports.RangeSource = (*InstrumentedSource)(nil)
	_ ports.SizedSource = (*instrumentedSizedSource)(nil)
)

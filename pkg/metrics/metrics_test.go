package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/user/insvframe/pkg/mocks"
	"github.com/user/insvframe/pkg/pipeline"
	"github.com/user/insvframe/pkg/ports"
)

func TestCollector_ObserveContainer(t *testing.T) {
	c := NewCollector()

	c.ObserveContainer(pipeline.BatchItem{
		Key:    "a.insv",
		Status: pipeline.ContainerOK,
		Result: pipeline.ContainerResult{
			Tracks: []pipeline.TrackResult{
				{Outcome: pipeline.TrackExtracted},
				{Outcome: pipeline.TrackExtracted},
				{Outcome: pipeline.TrackSkipped},
			},
			Duration: 300 * time.Millisecond,
		},
	})
	c.ObserveContainer(pipeline.BatchItem{
		Key:    "b.insv",
		Status: pipeline.ContainerFailed,
		Result: pipeline.ContainerResult{
			Tracks: []pipeline.TrackResult{{Outcome: pipeline.TrackFailed}},
		},
	})

	if got := testutil.ToFloat64(c.containers.WithLabelValues("ok")); got != 1 {
		t.Errorf("expected 1 ok container, got %v", got)
	}
	if got := testutil.ToFloat64(c.containers.WithLabelValues("failed")); got != 1 {
		t.Errorf("expected 1 failed container, got %v", got)
	}
	if got := testutil.ToFloat64(c.tracks.WithLabelValues("extracted")); got != 2 {
		t.Errorf("expected 2 extracted tracks, got %v", got)
	}
	if got := testutil.ToFloat64(c.tracks.WithLabelValues("skipped")); got != 1 {
		t.Errorf("expected 1 skipped track, got %v", got)
	}
	if got := testutil.CollectAndCount(c.duration); got != 1 {
		t.Errorf("expected one duration histogram, got %d", got)
	}
}

func TestCollector_Instrument(t *testing.T) {
	c := NewCollector()
	inner := mocks.NewRangeSource()
	inner.Put("a.insv", []byte("0123456789"))

	src := c.Instrument(inner)
	if _, ok := src.(ports.SizedSource); !ok {
		t.Fatal("expected the wrapper of a sized source to be sized")
	}

	ctx := context.Background()
	if _, err := src.ReadRange(ctx, "a.insv", 0, 4); err != nil {
		t.Fatalf("ReadRange failed: %v", err)
	}
	if _, err := src.ReadRange(ctx, "a.insv", 2, 6); err != nil {
		t.Fatalf("ReadRange failed: %v", err)
	}
	if _, err := src.ReadRange(ctx, "a.insv", 8, 6); !errors.Is(err, ports.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}

	if got := testutil.ToFloat64(c.reads.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected 2 ok reads, got %v", got)
	}
	if got := testutil.ToFloat64(c.reads.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed read, got %v", got)
	}
	if got := testutil.ToFloat64(c.readBytes); got != 10 {
		t.Errorf("expected 10 bytes read, got %v", got)
	}

	size, err := src.(ports.SizedSource).Size(ctx, "a.insv")
	if err != nil || size != 10 {
		t.Errorf("expected size 10, got %d, %v", size, err)
	}
}

type unsizedSource struct {
	ports.RangeSource
}

func TestCollector_Instrument_Unsized(t *testing.T) {
	c := NewCollector()
	src := c.Instrument(unsizedSource{mocks.NewRangeSource()})
	if _, ok := src.(ports.SizedSource); ok {
		t.Error("expected the wrapper of an unsized source to stay unsized")
	}
}

func TestCollector_Serve(t *testing.T) {
	c := NewCollector()
	c.ObserveContainer(pipeline.BatchItem{Status: pipeline.ContainerOK})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := c.Serve(ctx, "127.0.0.1:0", mocks.NewLogger())
	if err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	body := get(t, "http://"+addr+"/metrics")
	if !strings.Contains(body, `insvframe_containers_processed_total{status="ok"} 1`) {
		t.Errorf("expected container counter in metrics output, got:\n%s", body)
	}
	if body := get(t, "http://"+addr+"/healthz"); body != "ok" {
		t.Errorf("expected ok from /healthz, got %q", body)
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

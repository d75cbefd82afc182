package pipeline

import (
	"time"
)

// =============================================================================
// Container Jobs
// =============================================================================

// ContainerJob asks for one keyframe per track of a single container.
type ContainerJob struct {
	Key    string // object key or local path
	OutDir string // directory the JPEGs are written to
}

// ContainerStatus is the overall outcome of a container.
type ContainerStatus string

const (
	ContainerOK     ContainerStatus = "ok"
	ContainerFailed ContainerStatus = "failed"
)

// ContainerResult collects the per-track outcomes of one container.
type ContainerResult struct {
	Key      string
	Tracks   []TrackResult
	Duration time.Duration
}

// Count returns the number of tracks with the given outcome.
func (r ContainerResult) Count(outcome TrackOutcome) int {
	n := 0
	for _, t := range r.Tracks {
		if t.Outcome == outcome {
			n++
		}
	}
	return n
}

// =============================================================================
// Track Results
// =============================================================================

// TrackOutcome is what happened to a single track.
type TrackOutcome string

const (
	TrackExtracted TrackOutcome = "extracted"
	TrackSkipped   TrackOutcome = "skipped"
	TrackFailed    TrackOutcome = "failed"
)

// TrackResult describes one track of a container.
type TrackResult struct {
	Index   int // 0-based position among the container's trak boxes
	Outcome TrackOutcome

	// Set when the track was extracted.
	SampleNumber uint32
	SampleOffset uint64
	SampleSize   uint32
	OutputPath   string

	// Reason explains a skip; Err holds the failure.
	Reason string
	Err    error
}

// =============================================================================
// Batch Results
// =============================================================================

// BatchItem is the outcome of one container within a batch.
type BatchItem struct {
	Key    string
	Status ContainerStatus
	Result ContainerResult
	Err    error
}

// BatchResult lists every matched container in listing order.
type BatchResult struct {
	Items    []BatchItem
	Duration time.Duration
}

// Failed returns the number of containers that could not be processed.
func (r BatchResult) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Status == ContainerFailed {
			n++
		}
	}
	return n
}

// Tracks returns the number of tracks with the given outcome across the batch.
func (r BatchResult) Tracks(outcome TrackOutcome) int {
	n := 0
	for _, it := range r.Items {
		n += it.Result.Count(outcome)
	}
	return n
}

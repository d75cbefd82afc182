// Package extractor pulls one keyframe per HEVC track out of a container and
// writes it as a resized JPEG.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/insvframe/pkg/bmff"
	"github.com/user/insvframe/pkg/hevcconfig"
	"github.com/user/insvframe/pkg/pipeline"
	"github.com/user/insvframe/pkg/ports"
	"github.com/user/insvframe/pkg/sampletable"
)

// Config contains the output settings of the extractor.
type Config struct {
	Width   int // resize target width
	Height  int // resize target height
	Quality int // JPEG quality (1-100)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Width:   640,
		Height:  640,
		Quality: 90,
	}
}

// Extractor resolves, decodes and writes the middle keyframe of every HEVC
// track in a container.
type Extractor struct {
	src      ports.RangeSource
	decoder  ports.FrameDecoder
	renderer ports.Renderer
	fs       ports.FileSystem
	logger   ports.Logger
	config   Config
}

// New creates a new Extractor.
func New(
	src ports.RangeSource,
	decoder ports.FrameDecoder,
	renderer ports.Renderer,
	fs ports.FileSystem,
	logger ports.Logger,
	config Config,
) *Extractor {
	def := DefaultConfig()
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Height <= 0 {
		config.Height = def.Height
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = def.Quality
	}
	return &Extractor{
		src:      src,
		decoder:  decoder,
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("extractor"),
		config:   config,
	}
}

// Execute implements pipeline.Stage.
func (e *Extractor) Execute(ctx context.Context, job pipeline.ContainerJob) (pipeline.ContainerResult, error) {
	return e.Extract(ctx, job.Key, job.OutDir)
}

// Extract processes every track of the container at key. Format and decoder
// errors fail only the affected track and are reported in the result. I/O
// errors, a missing moov and cancellation abort the container and are
// returned.
func (e *Extractor) Extract(ctx context.Context, key, outDir string) (result pipeline.ContainerResult, err error) {
	start := time.Now()
	result.Key = key
	defer func() { result.Duration = time.Since(start) }()

	e.logger.Info("Processing %s", key)

	w := bmff.NewWalker(e.src, key)
	end := uint64(bmff.Unbounded)
	if sized, ok := e.src.(ports.SizedSource); ok {
		size, err := sized.Size(ctx, key)
		if err != nil {
			return result, fmt.Errorf("stat %s: %w", key, err)
		}
		end = uint64(size)
	}

	moov, ok, err := w.FindInRange(ctx, bmff.TypeMoov, 0, end)
	if err != nil {
		return result, fmt.Errorf("locate moov in %s: %w", key, err)
	}
	if !ok {
		return result, fmt.Errorf("%s: %w", key, bmff.Errorf("moov", "no moov box found"))
	}

	traks, err := w.FindAll(ctx, bmff.TypeTrak, moov)
	if err != nil {
		return result, fmt.Errorf("list tracks of %s: %w", key, err)
	}
	e.logger.Debug("Found %d tracks in %s", len(traks), key)

	if err := e.fs.MkdirAll(outDir); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	for i, trak := range traks {
		tr, err := e.extractTrack(ctx, w, key, outDir, i, trak)
		if err != nil {
			result.Tracks = append(result.Tracks, pipeline.TrackResult{Index: i, Outcome: pipeline.TrackFailed, Err: err})
			return result, fmt.Errorf("track %d of %s: %w", i, key, err)
		}
		result.Tracks = append(result.Tracks, tr)

		switch tr.Outcome {
		case pipeline.TrackExtracted:
			e.logger.Info("Track %d: sample %d written to %s", i, tr.SampleNumber, tr.OutputPath)
		case pipeline.TrackSkipped:
			e.logger.Info("Track %d skipped: %s", i, tr.Reason)
		case pipeline.TrackFailed:
			e.logger.Warn("Track %d failed: %s", i, tr.Err)
		}
	}

	return result, nil
}

// extractTrack returns a non-nil error only for conditions that abort the
// whole container. Track-local failures are reported in the TrackResult.
func (e *Extractor) extractTrack(
	ctx context.Context,
	w *bmff.Walker,
	key, outDir string,
	idx int,
	trak bmff.Box,
) (pipeline.TrackResult, error) {
	tr := pipeline.TrackResult{Index: idx}
	path := fmt.Sprintf("trak[%d]", idx)

	fail := func(err error) (pipeline.TrackResult, error) {
		if isFatal(ctx, err) {
			return tr, err
		}
		tr.Outcome = pipeline.TrackFailed
		tr.Err = bmff.Within(path, err)
		return tr, nil
	}
	skip := func(reason string) (pipeline.TrackResult, error) {
		tr.Outcome = pipeline.TrackSkipped
		tr.Reason = reason
		return tr, nil
	}

	payload, err := w.ReadPayload(ctx, trak)
	if err != nil {
		return fail(err)
	}

	stbl, ok, err := bmff.FindNested(payload, bmff.TypeMdia, bmff.TypeMinf, bmff.TypeStbl)
	if err != nil {
		return fail(err)
	}
	if !ok {
		return fail(bmff.Errorf("mdia/minf/stbl", "missing sample table"))
	}

	stsd, ok, err := bmff.Find(stbl, bmff.TypeStsd)
	if err != nil {
		return fail(bmff.Within("mdia/minf/stbl", err))
	}
	if !ok {
		return skip("no sample description")
	}
	params, err := hevcconfig.FromSampleDescription(stsd)
	if errors.Is(err, hevcconfig.ErrNoHEVCConfig) {
		return skip("no HEVC configuration")
	}
	if err != nil {
		return fail(bmff.Within("mdia/minf/stbl", err))
	}
	if info := hevcconfig.Describe(params); len(info.NALTypes) > 0 {
		e.logger.Debug("Track %d parameter sets: %s (%dx%d)", idx, strings.Join(info.NALTypes, ", "), info.Width, info.Height)
	}

	table, err := sampletable.Parse(stbl)
	if errors.Is(err, sampletable.ErrNoSyncSamples) {
		return skip("no sync samples")
	}
	if err != nil {
		return fail(bmff.Within("mdia/minf", err))
	}
	sample, err := table.MiddleSync()
	if err != nil {
		return fail(bmff.Within("mdia/minf", err))
	}
	e.logger.Debug("Track %d: %d sync samples, picked sample %d at %d+%d",
		idx, len(table.SyncSamples), sample.Number, sample.Offset, sample.Size)

	data, err := w.ReadPayload(ctx, bmff.Box{Offset: sample.Offset, Size: uint64(sample.Size)})
	if err != nil {
		return fail(err)
	}

	annexB, err := hevcconfig.AssembleAnnexB(params, data)
	if err != nil {
		return fail(err)
	}

	img, err := e.decoder.DecodeFrame(ctx, annexB)
	if err != nil {
		if isFatal(ctx, err) || errors.Is(err, ports.ErrDecoderUnavailable) {
			return tr, err
		}
		return fail(fmt.Errorf("%w: decode sample %d: %w", bmff.ErrFormat, sample.Number, err))
	}

	img = e.renderer.ResizeImage(img, e.config.Width, e.config.Height)
	jpg, err := e.renderer.EncodeImage(img, ports.FormatJPEG, e.config.Quality)
	if err != nil {
		return fail(fmt.Errorf("encode jpeg: %w", err))
	}

	// A failed write means the output directory is unusable for every track.
	out := filepath.Join(outDir, OutputName(key, sample.Number, idx))
	if err := e.fs.WriteFile(out, jpg); err != nil {
		return tr, fmt.Errorf("write %s: %w", out, err)
	}

	tr.Outcome = pipeline.TrackExtracted
	tr.SampleNumber = sample.Number
	tr.SampleOffset = sample.Offset
	tr.SampleSize = sample.Size
	tr.OutputPath = out
	return tr, nil
}

// isFatal reports whether err must abort the container instead of failing a
// single track.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, ports.ErrIO) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// OutputName derives the JPEG file name for a track from the container key,
// so that repeated runs overwrite earlier output.
func OutputName(key string, sampleNumber uint32, trackIdx int) string {
	name := strings.ReplaceAll(key, "/", "__")
	name = strings.ReplaceAll(name, "\\", "__")
	name = strings.ReplaceAll(name, ":", "")
	return fmt.Sprintf("%s.%d.%d.%s", name, sampleNumber, trackIdx, ports.FormatJPEG.Extension())
}

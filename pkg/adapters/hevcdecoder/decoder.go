// Package hevcdecoder decodes a single HEVC access unit by piping it through
// an external ffmpeg process.
package hevcdecoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
	"time"

	"github.com/user/insvframe/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = fmt.Errorf("hevcdecoder: ffmpeg not found: %w", ports.ErrDecoderUnavailable)

	// ErrDecodeFailed is returned when ffmpeg rejects the bitstream or
	// produces no picture.
	ErrDecodeFailed = errors.New("hevcdecoder: decode failed")
)

// maxStderr bounds the ffmpeg diagnostics kept in error messages.
const maxStderr = 2048

// Decoder implements ports.FrameDecoder with ffmpeg.
type Decoder struct {
	ffmpegPath string
	logger     ports.Logger
}

// New locates ffmpeg (see FindFFmpeg) and returns a Decoder using it.
func New(ffmpegPath string, logger ports.Logger) (*Decoder, error) {
	path, err := FindFFmpeg(ffmpegPath)
	if err != nil {
		return nil, err
	}
	logger = logger.WithComponent("hevcdecoder")
	logger.Debug("Using ffmpeg at %s", path)
	return &Decoder{ffmpegPath: path, logger: logger}, nil
}

// Path returns the ffmpeg binary in use.
func (d *Decoder) Path() string {
	return d.ffmpegPath
}

// DecodeFrame feeds the Annex-B buffer to ffmpeg on stdin and reads the
// first decoded picture back as PNG from stdout.
func (d *Decoder) DecodeFrame(ctx context.Context, annexB []byte) (image.Image, error) {
	if len(annexB) == 0 {
		return nil, fmt.Errorf("%w: empty bitstream", ErrDecodeFailed)
	}

	start := time.Now()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-f", "hevc",
		"-i", "pipe:0",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(annexB)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: ffmpeg exited with %d: %s", ErrDecodeFailed, exitErr.ExitCode(), trimStderr(stderr.String()))
		}
		return nil, fmt.Errorf("%w: run ffmpeg: %w", ports.ErrDecoderUnavailable, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no picture: %s", ErrDecodeFailed, trimStderr(stderr.String()))
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: decode png: %w", ErrDecodeFailed, err)
	}

	b := img.Bounds()
	d.logger.Debug("Decoded %dx%d picture from %d bytes in %d ms", b.Dx(), b.Dy(), len(annexB), time.Since(start).Milliseconds())
	return img, nil
}

func trimStderr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	return s
}

var _ ports.FrameDecoder = (*Decoder)(nil)

// Package main provides the CLI entry point for insvframe.
package main

import (
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/insvframe/pkg/adapters/hevcdecoder"
	"github.com/user/insvframe/pkg/pipeline"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "insvframe",
		Usage:       l10n.T("Extract one keyframe per HEVC track from 360° camera recordings"),
		Description: l10n.T("insvframe reads only the boxes and the sample it needs from each .insv or .mp4 container, decodes the middle keyframe of every HEVC track with ffmpeg and writes it as a JPEG."),
		Version:     version,
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     l10n.T("Extract keyframes from a single container"),
				ArgsUsage: "<key>",
				Flags:     commonFlags(),
				Action:    runExtract,
			},
			{
				Name:      "batch",
				Usage:     l10n.T("Extract keyframes from every container under a prefix"),
				ArgsUsage: "<prefix>",
				Flags:     commonFlags(),
				Action:    runBatch,
			},
			{
				Name:   "version",
				Usage:  l10n.T("Show version information"),
				Action: runVersion,
			},
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Configuration")},
		&cli.StringFlag{Name: "source", Usage: l10n.T("Container source (local, minio)"), Category: l10n.T("Input")},
		&cli.StringFlag{Name: "bucket", Usage: l10n.T("Bucket name for the minio source"), Category: l10n.T("Input")},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Directory the JPEG files are written to"), Category: l10n.T("Output")},
		&cli.IntFlag{Name: "width", Usage: l10n.T("Output width in pixels (default: 640)"), Category: l10n.T("Output")},
		&cli.IntFlag{Name: "height", Usage: l10n.T("Output height in pixels (default: 640)"), Category: l10n.T("Output")},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("JPEG quality (1-100, default: 90)"), Category: l10n.T("Output")},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: l10n.T("Containers processed in parallel (default: number of CPUs)"), Category: l10n.T("Performance")},
		&cli.DurationFlag{Name: "timeout", Usage: l10n.T("Per-container timeout (0 = none)"), Category: l10n.T("Performance")},
		&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg executable"), Category: l10n.T("Decoder")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
		&cli.StringFlag{Name: "metrics-addr", Usage: l10n.T("Serve Prometheus metrics on this address (e.g., :9100)"), Category: l10n.T("Logging")},
	}
}

func runExtract(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("Exactly one container key is required"), 2)
	}
	key := c.Args().First()

	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.extractor.Extract(env.ctx, key, env.cfg.OutputDir)
	item := pipeline.BatchItem{Key: key, Status: pipeline.ContainerOK, Result: result, Err: err}
	if err != nil {
		item.Status = pipeline.ContainerFailed
	}
	if env.collector != nil {
		env.collector.ObserveContainer(item)
	}
	if err != nil {
		return err
	}

	env.log.Info("Extracted %d of %d tracks from %s", result.Count(pipeline.TrackExtracted), len(result.Tracks), key)
	if n := result.Count(pipeline.TrackFailed); n > 0 {
		return cli.Exit(l10n.F("%d tracks failed", n), 1)
	}
	return nil
}

func runBatch(c *cli.Context) error {
	if c.NArg() > 1 {
		return cli.Exit(l10n.T("At most one prefix can be given"), 2)
	}
	prefix := c.Args().First()

	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.runner.Run(env.ctx, prefix, env.cfg.OutputDir)
	if err != nil {
		return err
	}
	if n := result.Failed(); n > 0 {
		return cli.Exit(l10n.F("%d containers failed", n), 1)
	}
	return nil
}

func runVersion(c *cli.Context) error {
	fmt.Println(l10n.F("insvframe version %s", version))
	if path, err := hevcdecoder.FindFFmpeg(""); err == nil {
		fmt.Println(l10n.F("ffmpeg: %s", path))
	} else {
		fmt.Println(l10n.T("ffmpeg: not found"))
	}
	return nil
}

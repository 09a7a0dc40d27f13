// bump2normal converts grayscale height maps into tangent-space normal maps.
//
// Usage:
//
//	bump2normal [flags] file...
//
// Each input is written next to itself as <name>_b2n.bmp.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/bump2normal/internal/codec"
	"github.com/Faultbox/bump2normal/internal/codec/gocodec"
	"github.com/Faultbox/bump2normal/internal/codec/sdlcodec"
	"github.com/Faultbox/bump2normal/internal/config"
	"github.com/Faultbox/bump2normal/internal/logger"
	"github.com/Faultbox/bump2normal/internal/pipeline"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
		return
	}

	files := config.Args()
	if len(files) == 0 {
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, cfg, files)
	stop()
	logger.Sync()
	os.Exit(code)
}

// run converts files with the configured codec and returns the exit status.
// Setup failures give 1. Per-file failures are logged and still give 0.
func run(ctx context.Context, cfg *config.Config, files []string) int {
	c, err := openCodec(cfg.Codec.Backend)
	if err != nil {
		logger.Error("failed to initialize codec", zap.String("backend", cfg.Codec.Backend), zap.Error(err))
		return 1
	}
	defer c.Close()

	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			logger.Error("failed to create output directory", zap.String("dir", cfg.Output.Dir), zap.Error(err))
			return 1
		}
	}

	conv := pipeline.New(c, pipeline.Options{
		Channel: cfg.Channel(),
		Map:     cfg.Options(),
		Suffix:  cfg.Output.Suffix,
		OutDir:  cfg.Output.Dir,
		Verify:  cfg.Output.Verify,
	})
	sum := conv.Run(ctx, files)

	logger.Info("done",
		zap.Int("converted", len(sum.Results)),
		zap.Int("failed", sum.Failed),
	)
	return 0
}

func openCodec(backend string) (codec.Codec, error) {
	switch backend {
	case codec.BackendSDL:
		c, err := sdlcodec.New()
		if err != nil {
			return nil, err
		}
		return c, nil
	case codec.BackendGo:
		return gocodec.New(), nil
	default:
		return nil, fmt.Errorf("unknown codec backend %q", backend)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `bump2normal - height map to normal map converter

Usage:
  bump2normal [flags] file...

Every input is written as <name>_b2n.bmp (24-bit BMP) next to the input,
or into -out-dir. Files that fail to load or save are logged and skipped.

Examples:
  bump2normal rock.png brick.tga
  bump2normal -depth 2 -channel luma -out-dir normals textures/*.png
  bump2normal -codec sdl -parallel terrain.png
  bump2normal -verify rock.png
  bump2normal -write-config bump2normal.yaml

Flags:`)
	flag.PrintDefaults()
}

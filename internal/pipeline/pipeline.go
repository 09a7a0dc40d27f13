// Package pipeline runs the per-file conversion: load, extract heights, build
// edge normals, encode pixels and save.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/bump2normal/internal/codec"
	"github.com/Faultbox/bump2normal/internal/logger"
	"github.com/Faultbox/bump2normal/internal/normalmap"
)

// Options configure a Converter.
type Options struct {
	Channel normalmap.Channel
	Map     normalmap.Options
	Suffix  string // appended after the input's extension is removed
	OutDir  string // empty means next to the input

	// Verify decodes every encoded pixel before saving and fails the file
	// when one strays from unit length by more than Tolerance.
	Verify    bool
	Tolerance float64 // 0 means normalmap.UnitTolerance
}

// Converter turns height map files into normal map files.
// It holds no per-file state between calls.
type Converter struct {
	codec codec.Codec
	opts  Options
}

// New creates a Converter writing through c.
func New(c codec.Codec, opts Options) *Converter {
	if opts.Suffix == "" {
		opts.Suffix = "_b2n.bmp"
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = normalmap.UnitTolerance
	}
	return &Converter{codec: c, opts: opts}
}

// OutputPath derives the output file name for input: the final extension of
// the base name is replaced by suffix. outDir, when set, replaces the directory.
func OutputPath(input, suffix, outDir string) string {
	dir, base := filepath.Split(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, base+suffix)
}

// Result describes one converted file.
type Result struct {
	Input    string
	Output   string
	Width    int
	Height   int
	State    State   // StateSaved for every returned Result
	Worst    float64 // largest unit-length deviation; set only when verifying
	Duration time.Duration
}

// ConvertFile runs one file through every state. All tables built for the file
// go out of scope when it returns.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	state := StatePending
	fail := func(kind, err error) (*Result, error) {
		return nil, &FileError{Path: path, State: state, Kind: kind, Err: err}
	}

	hf, err := c.codec.Load(path, c.opts.Channel)
	if err != nil {
		return fail(ErrDecode, err)
	}
	// The codec decodes and extracts heights in one call.
	state = StateHeightExtracted

	edges, err := normalmap.BuildEdges(ctx, hf, c.opts.Map)
	if err != nil {
		return fail(nil, err)
	}
	state = StateEdgesBuilt

	out, err := normalmap.Encode(ctx, edges, c.opts.Map)
	if err != nil {
		return fail(nil, err)
	}
	state = StatePixelsEncoded

	var worst float64
	if c.opts.Verify {
		var bad int
		bad, worst = normalmap.Verify(out, c.opts.Tolerance)
		if bad > 0 {
			return fail(ErrVerify, fmt.Errorf("%d of %d pixels off unit length by up to %.4g",
				bad, hf.Width*hf.Height, worst))
		}
	}

	outPath := OutputPath(path, c.opts.Suffix, c.opts.OutDir)
	if err := c.codec.Save(outPath, out); err != nil {
		return fail(ErrEncode, fmt.Errorf("writing %s: %w", outPath, err))
	}
	state = StateSaved

	return &Result{
		Input:    path,
		Output:   outPath,
		Width:    hf.Width,
		Height:   hf.Height,
		State:    state,
		Worst:    worst,
		Duration: time.Since(start),
	}, nil
}

// Summary reports a whole run.
type Summary struct {
	Results []Result
	Failed  int
	Err     error // every per-file error, combined
}

// Run converts files one after another. A failing file is logged and skipped.
// Run stops early only when ctx is canceled.
func (c *Converter) Run(ctx context.Context, files []string) Summary {
	var sum Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			sum.Err = multierr.Append(sum.Err, err)
			break
		}

		log := logger.With(zap.String("file", path))
		res, err := c.ConvertFile(ctx, path)
		if err != nil {
			sum.Failed++
			sum.Err = multierr.Append(sum.Err, err)
			fields := []zap.Field{zap.Error(err)}
			var fe *FileError
			if errors.As(err, &fe) {
				fields = append(fields, zap.Stringer("state", fe.State))
			}
			log.Error("conversion failed", fields...)
			continue
		}

		sum.Results = append(sum.Results, *res)
		fields := []zap.Field{
			zap.String("output", res.Output),
			zap.Int("width", res.Width),
			zap.Int("height", res.Height),
			zap.Duration("took", res.Duration),
		}
		if c.opts.Verify {
			fields = append(fields, zap.Float64("worst", res.Worst))
		}
		log.Info("processed", fields...)
	}
	return sum
}

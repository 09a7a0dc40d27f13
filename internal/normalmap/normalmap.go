package normalmap

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options control normal map generation.
type Options struct {
	Depth    float64
	Parallel bool
	Workers  int // row bands when Parallel; 0 means GOMAXPROCS
}

// DefaultOptions returns sequential generation at DefaultDepth.
func DefaultOptions() Options {
	return Options{Depth: DefaultDepth}
}

// Generate builds the edge table for hf and encodes one normal per pixel.
// The returned image has hf's dimensions and is fully opaque.
func Generate(ctx context.Context, hf *HeightField, opts Options) (*image.RGBA, error) {
	edges, err := BuildEdges(ctx, hf, opts)
	if err != nil {
		return nil, err
	}
	return Encode(ctx, edges, opts)
}

// BuildEdges builds the edge table, concurrently when opts.Parallel is set.
func BuildEdges(ctx context.Context, hf *HeightField, opts Options) (*EdgeTable, error) {
	if opts.Parallel {
		return BuildEdgeTableParallel(ctx, hf, opts.Depth)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return BuildEdgeTable(hf, opts.Depth), nil
}

// Encode averages and color-encodes every pixel of t.
func Encode(ctx context.Context, t *EdgeTable, opts Options) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	if !opts.Parallel {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t.encodeRows(img, 0, t.Height)
		return img, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	band := (t.Height + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < t.Height; y0 += band {
		y1 := min(y0+band, t.Height)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t.encodeRows(img, y0, y1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

// encodeRows writes rows [y0, y1). Bands never overlap, so concurrent calls are safe.
func (t *EdgeTable) encodeRows(img *image.RGBA, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := range t.Width {
			n, _ := t.PixelNormal(x, y)
			c := EncodeNormal(n)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
	}
}

package normalmap

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	m "github.com/Faultbox/bump2normal/pkg/math"
)

// DefaultDepth is the z magnitude of every orthogonal gradient vector.
const DefaultDepth = 0.5

// EdgeTable holds one normal per pair of adjacent height samples.
//
// Each orientation has its own dense row-major table indexed by the edge's anchor:
//
//	Horizontal  (x,y)-(x+1,y)    (W-1) x H
//	Vertical    (x,y)-(x,y+1)    W x (H-1)
//	DiagDown    (x,y)-(x+1,y+1)  (W-1) x (H-1)
//	DiagUp      (x+1,y)-(x,y+1)  (W-1) x (H-1)
//
// Both endpoints of an edge read the same value. Tables are never mutated after
// construction.
type EdgeTable struct {
	Width  int
	Height int

	Horizontal []m.Vec3
	Vertical   []m.Vec3
	DiagDown   []m.Vec3
	DiagUp     []m.Vec3
}

// BuildEdgeTable computes every edge normal of hf in one sequential pass per orientation.
func BuildEdgeTable(hf *HeightField, depth float64) *EdgeTable {
	t := newEdgeTable(hf.Width, hf.Height)
	t.fillHorizontal(hf, depth)
	t.fillVertical(hf, depth)
	t.fillDiagDown(hf, depth)
	t.fillDiagUp(hf, depth)
	return t
}

// BuildEdgeTableParallel is BuildEdgeTable with the four orientation passes run
// concurrently. Every cell depends only on two samples, so the result is
// bit-identical to the sequential build.
func BuildEdgeTableParallel(ctx context.Context, hf *HeightField, depth float64) (*EdgeTable, error) {
	t := newEdgeTable(hf.Width, hf.Height)
	g, ctx := errgroup.WithContext(ctx)
	for _, fill := range []func(*HeightField, float64){
		t.fillHorizontal, t.fillVertical, t.fillDiagDown, t.fillDiagUp,
	} {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fill(hf, depth)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func newEdgeTable(w, h int) *EdgeTable {
	dw, dh := max(w-1, 0), max(h-1, 0)
	return &EdgeTable{
		Width:      w,
		Height:     h,
		Horizontal: make([]m.Vec3, dw*h),
		Vertical:   make([]m.Vec3, w*dh),
		DiagDown:   make([]m.Vec3, dw*dh),
		DiagUp:     make([]m.Vec3, dw*dh),
	}
}

func (t *EdgeTable) fillHorizontal(hf *HeightField, depth float64) {
	dw := t.Width - 1
	for y := range t.Height {
		for x := range dw {
			t.Horizontal[y*dw+x] = m.Vec3{X: hf.h(x, y) - hf.h(x+1, y), Y: 0, Z: depth}.Normalize()
		}
	}
}

func (t *EdgeTable) fillVertical(hf *HeightField, depth float64) {
	for y := range t.Height - 1 {
		for x := range t.Width {
			t.Vertical[y*t.Width+x] = m.Vec3{X: 0, Y: hf.h(x, y) - hf.h(x, y+1), Z: depth}.Normalize()
		}
	}
}

func (t *EdgeTable) fillDiagDown(hf *HeightField, depth float64) {
	dw := t.Width - 1
	z := depth * math.Sqrt2
	for y := range t.Height - 1 {
		for x := range dw {
			d := (hf.h(x, y) - hf.h(x+1, y+1)) / math.Sqrt2
			t.DiagDown[y*dw+x] = m.Vec3{X: d, Y: d, Z: z}.Normalize()
		}
	}
}

// fillDiagUp uses the slope from (x,y+1) up to (x+1,y). Moving along +x climbs
// it and moving along +y descends it, so the y component is the negated x.
func (t *EdgeTable) fillDiagUp(hf *HeightField, depth float64) {
	dw := t.Width - 1
	z := depth * math.Sqrt2
	for y := range t.Height - 1 {
		for x := range dw {
			d := (hf.h(x, y+1) - hf.h(x+1, y)) / math.Sqrt2
			t.DiagUp[y*dw+x] = m.Vec3{X: d, Y: -d, Z: z}.Normalize()
		}
	}
}

// H returns the normal of the horizontal edge (x,y)-(x+1,y).
func (t *EdgeTable) H(x, y int) m.Vec3 { return t.Horizontal[y*(t.Width-1)+x] }

// V returns the normal of the vertical edge (x,y)-(x,y+1).
func (t *EdgeTable) V(x, y int) m.Vec3 { return t.Vertical[y*t.Width+x] }

// DD returns the normal of the diagonal edge (x,y)-(x+1,y+1).
func (t *EdgeTable) DD(x, y int) m.Vec3 { return t.DiagDown[y*(t.Width-1)+x] }

// DU returns the normal of the diagonal edge (x+1,y)-(x,y+1).
func (t *EdgeTable) DU(x, y int) m.Vec3 { return t.DiagUp[y*(t.Width-1)+x] }

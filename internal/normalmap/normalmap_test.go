package normalmap

import (
	"context"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	m "github.com/Faultbox/bump2normal/pkg/math"
)

func fill(w, h int, v uint8) *HeightField {
	s := make([]uint8, w*h)
	for i := range s {
		s[i] = v
	}
	return &HeightField{Width: w, Height: h, Samples: s}
}

func randomField(w, h int, seed int64) *HeightField {
	r := rand.New(rand.NewSource(seed))
	s := make([]uint8, w*h)
	for i := range s {
		s[i] = uint8(r.Intn(256))
	}
	return &HeightField{Width: w, Height: h, Samples: s}
}

// stepField is 0 left of column split and 255 from split on.
func stepField(w, h, split int) *HeightField {
	hf := fill(w, h, 0)
	for y := range h {
		for x := split; x < w; x++ {
			hf.Samples[y*w+x] = 255
		}
	}
	return hf
}

func TestEncodeChannel(t *testing.T) {
	tests := []struct {
		v    float64
		want uint8
	}{
		{-1, 0},
		{0, 128},
		{1, 255},
		{-0.5, 64},  // 63.75 + 0.5
		{0.5, 191},  // 191.25 + 0.5
		{1.0000001, 255},
		{-1.5, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := EncodeChannel(tt.v); got != tt.want {
			t.Errorf("EncodeChannel(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestDecodeChannel(t *testing.T) {
	if got := DecodeChannel(0); got != -1 {
		t.Errorf("DecodeChannel(0) = %v, want -1", got)
	}
	if got := DecodeChannel(255); got != 1 {
		t.Errorf("DecodeChannel(255) = %v, want 1", got)
	}
	for c := 0; c < 256; c++ {
		if got := EncodeChannel(DecodeChannel(uint8(c))); got != uint8(c) {
			t.Errorf("EncodeChannel(DecodeChannel(%d)) = %d", c, got)
		}
	}
}

func TestEdgeNormals(t *testing.T) {
	// 0 255
	// 255 0
	hf := &HeightField{Width: 2, Height: 2, Samples: []uint8{0, 255, 255, 0}}
	tbl := BuildEdgeTable(hf, 0.5)

	if got := len(tbl.Horizontal); got != 2 {
		t.Errorf("len(Horizontal) = %d, want 2", got)
	}
	if got := len(tbl.Vertical); got != 2 {
		t.Errorf("len(Vertical) = %d, want 2", got)
	}
	if got := len(tbl.DiagDown); got != 1 {
		t.Errorf("len(DiagDown) = %d, want 1", got)
	}

	wantH := m.Vec3{X: -255, Y: 0, Z: 0.5}.Normalize()
	if got := tbl.H(0, 0); got != wantH {
		t.Errorf("H(0,0) = %v, want %v", got, wantH)
	}
	if got := tbl.H(0, 1); got.X <= 0 {
		t.Errorf("H(0,1).X = %v, want > 0 (left side higher)", got.X)
	}
	wantV := m.Vec3{X: 0, Y: -255, Z: 0.5}.Normalize()
	if got := tbl.V(0, 0); got != wantV {
		t.Errorf("V(0,0) = %v, want %v", got, wantV)
	}

	// Both diagonal endpoints are 0, so the down diagonal is flat.
	if got := tbl.DD(0, 0); got != m.Up {
		t.Errorf("DD(0,0) = %v, want %v", got, m.Up)
	}

	// Up diagonal runs from (1,0)=255 to (0,1)=255: flat as well.
	if got := tbl.DU(0, 0); got != m.Up {
		t.Errorf("DU(0,0) = %v, want %v", got, m.Up)
	}
}

func TestDiagonalSigns(t *testing.T) {
	// Only (0,1) is raised.
	hf := &HeightField{Width: 2, Height: 2, Samples: []uint8{0, 0, 255, 0}}
	depth := 0.5
	tbl := BuildEdgeTable(hf, depth)

	// Variables keep the expected values in float64 arithmetic; constant
	// expressions would be folded exactly and miss by an ULP.
	step := 255.0
	d := step / math.Sqrt2
	z := depth * math.Sqrt2
	want := m.Vec3{X: d, Y: -d, Z: z}.Normalize()
	if got := tbl.DU(0, 0); got != want {
		t.Errorf("DU(0,0) = %v, want %v", got, want)
	}

	// Only (1,1) is raised.
	hf = &HeightField{Width: 2, Height: 2, Samples: []uint8{0, 0, 0, 255}}
	tbl = BuildEdgeTable(hf, depth)
	want = m.Vec3{X: -d, Y: -d, Z: z}.Normalize()
	if got := tbl.DD(0, 0); got != want {
		t.Errorf("DD(0,0) = %v, want %v", got, want)
	}
}

func TestEdgeTableDeterministic(t *testing.T) {
	hf := randomField(17, 11, 1)
	a := BuildEdgeTable(hf, 0.5)
	b := BuildEdgeTable(hf, 0.5)
	if !equalTables(a, b) {
		t.Error("two builds of the same height field differ")
	}
}

func TestEdgeTableParallelMatchesSequential(t *testing.T) {
	hf := randomField(33, 21, 2)
	seq := BuildEdgeTable(hf, 0.5)
	par, err := BuildEdgeTableParallel(context.Background(), hf, 0.5)
	if err != nil {
		t.Fatalf("BuildEdgeTableParallel: %v", err)
	}
	if !equalTables(seq, par) {
		t.Error("parallel edge table differs from sequential")
	}
}

func TestBuildEdgeTableParallelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildEdgeTableParallel(ctx, fill(4, 4, 0), 0.5); err == nil {
		t.Error("expected error from canceled context")
	}
}

func equalTables(a, b *EdgeTable) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for _, p := range [][2][]m.Vec3{
		{a.Horizontal, b.Horizontal},
		{a.Vertical, b.Vertical},
		{a.DiagDown, b.DiagDown},
		{a.DiagUp, b.DiagUp},
	} {
		if len(p[0]) != len(p[1]) {
			return false
		}
		for i := range p[0] {
			if p[0][i] != p[1][i] {
				return false
			}
		}
	}
	return true
}

func TestContributionCounts(t *testing.T) {
	tbl := BuildEdgeTable(randomField(4, 4, 3), 0.5)

	want := [4][4]int{
		{3, 5, 5, 3},
		{5, 8, 8, 5},
		{5, 8, 8, 5},
		{3, 5, 5, 3},
	}
	for y := range 4 {
		for x := range 4 {
			if _, n := tbl.PixelNormal(x, y); n != want[y][x] {
				t.Errorf("PixelNormal(%d,%d) used %d contributions, want %d", x, y, n, want[y][x])
			}
		}
	}
}

func TestPixelNormalsAreUnit(t *testing.T) {
	hf := randomField(23, 19, 4)
	tbl := BuildEdgeTable(hf, 0.5)
	for y := range hf.Height {
		for x := range hf.Width {
			n, _ := tbl.PixelNormal(x, y)
			if l := n.Length(); math.Abs(l-1) > 1e-12 {
				t.Fatalf("PixelNormal(%d,%d) length = %v, want 1", x, y, l)
			}
		}
	}
}

func TestFlatFieldPointsUp(t *testing.T) {
	for _, tt := range []struct {
		name string
		w, h int
		v    uint8
	}{
		{"2x2 white", 2, 2, 255},
		{"5x3 gray", 5, 3, 100},
		{"1x1", 1, 1, 7},
		{"1x4", 1, 4, 0},
		{"4x1", 4, 1, 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Generate(context.Background(), fill(tt.w, tt.h, tt.v), DefaultOptions())
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			for y := range tt.h {
				for x := range tt.w {
					c := img.RGBAAt(x, y)
					if c.R != 128 || c.G != 128 || c.B != 255 || c.A != 255 {
						t.Errorf("pixel (%d,%d) = %v, want {128 128 255 255}", x, y, c)
					}
				}
			}
		})
	}
}

func TestSinglePixelIsDegenerate(t *testing.T) {
	tbl := BuildEdgeTable(fill(1, 1, 42), 0.5)
	n, count := tbl.PixelNormal(0, 0)
	if count != 0 {
		t.Errorf("1x1 pixel used %d contributions, want 0", count)
	}
	if n != m.Up {
		t.Errorf("1x1 normal = %v, want %v", n, m.Up)
	}
}

func TestZeroDepthFlatIsDegenerate(t *testing.T) {
	tbl := BuildEdgeTable(fill(3, 3, 9), 0)
	for _, e := range tbl.Horizontal {
		if e != (m.Vec3{}) {
			t.Fatalf("flat zero-depth edge = %v, want zero", e)
		}
	}
	if n, _ := tbl.PixelNormal(1, 1); n != m.Up {
		t.Errorf("zero-depth flat normal = %v, want %v", n, m.Up)
	}
}

func TestThinGrids(t *testing.T) {
	col := BuildEdgeTable(randomField(1, 5, 5), 0.5)
	if len(col.Horizontal) != 0 || len(col.DiagDown) != 0 || len(col.DiagUp) != 0 {
		t.Errorf("1x5 grid has horizontal or diagonal edges: %d %d %d",
			len(col.Horizontal), len(col.DiagDown), len(col.DiagUp))
	}
	if len(col.Vertical) != 4 {
		t.Errorf("1x5 grid has %d vertical edges, want 4", len(col.Vertical))
	}
	wantCol := []int{1, 2, 2, 2, 1}
	for y, want := range wantCol {
		n, count := col.PixelNormal(0, y)
		if count != want {
			t.Errorf("1x5 (0,%d) used %d contributions, want %d", y, count, want)
		}
		if n.X != 0 {
			t.Errorf("1x5 (0,%d) X = %v, want 0", y, n.X)
		}
	}

	row := BuildEdgeTable(randomField(5, 1, 6), 0.5)
	if len(row.Vertical) != 0 || len(row.DiagDown) != 0 || len(row.DiagUp) != 0 {
		t.Error("5x1 grid has vertical or diagonal edges")
	}
	for x := range 5 {
		if n, _ := row.PixelNormal(x, 0); n.Y != 0 {
			t.Errorf("5x1 (%d,0) Y = %v, want 0", x, n.Y)
		}
	}
}

func TestHorizontalStep(t *testing.T) {
	hf := stepField(6, 4, 3)
	tbl := BuildEdgeTable(hf, 0.5)

	// Border rows lack one of the two cancelling diagonals, so check interior rows.
	for _, x := range []int{2, 3} {
		for y := 1; y < hf.Height-1; y++ {
			n, _ := tbl.PixelNormal(x, y)
			if n.X >= 0 {
				t.Errorf("step pixel (%d,%d) X = %v, want < 0 (away from the higher right side)", x, y, n.X)
			}
			if n.Y != 0 {
				t.Errorf("step pixel (%d,%d) Y = %v, want 0", x, y, n.Y)
			}
		}
	}

	// Columns away from the step see a flat neighborhood.
	for _, x := range []int{0, 5} {
		if n, _ := tbl.PixelNormal(x, 1); n != m.Up {
			t.Errorf("flat pixel (%d,1) = %v, want %v", x, n, m.Up)
		}
	}
}

func TestVerticalStep(t *testing.T) {
	// Top two rows 0, bottom two rows 255.
	hf := fill(4, 4, 0)
	for i := 8; i < 16; i++ {
		hf.Samples[i] = 255
	}
	tbl := BuildEdgeTable(hf, 0.5)
	for x := 1; x < 3; x++ {
		n, _ := tbl.PixelNormal(x, 1)
		if n.Y >= 0 {
			t.Errorf("step pixel (%d,1) Y = %v, want < 0", x, n.Y)
		}
		if n.X != 0 {
			t.Errorf("step pixel (%d,1) X = %v, want 0", x, n.X)
		}
	}
}

func TestGenerateParallelMatchesSequential(t *testing.T) {
	hf := randomField(31, 29, 7)
	seq, err := Generate(context.Background(), hf, Options{Depth: 0.5})
	if err != nil {
		t.Fatalf("sequential Generate: %v", err)
	}
	for _, workers := range []int{0, 1, 3, 64} {
		par, err := Generate(context.Background(), hf, Options{Depth: 0.5, Parallel: true, Workers: workers})
		if err != nil {
			t.Fatalf("parallel Generate(workers=%d): %v", workers, err)
		}
		if string(par.Pix) != string(seq.Pix) {
			t.Errorf("parallel output with %d workers differs from sequential", workers)
		}
	}
}

func TestGenerateOpaque(t *testing.T) {
	img, err := Generate(context.Background(), randomField(8, 8, 8), DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !img.Opaque() {
		t.Error("normal map is not opaque")
	}
	if got := img.Bounds().Size(); got.X != 8 || got.Y != 8 {
		t.Errorf("size = %v, want 8x8", got)
	}
}

func TestDecodeNormal(t *testing.T) {
	tests := []struct {
		in   color.RGBA
		want m.Vec3
	}{
		{color.RGBA{0, 0, 255, 255}, m.Vec3{X: -1, Y: -1, Z: 1}},
		{color.RGBA{255, 255, 0, 255}, m.Vec3{X: 1, Y: 1, Z: -1}},
	}
	for _, tt := range tests {
		if got := DecodeNormal(tt.in); got != tt.want {
			t.Errorf("DecodeNormal(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	// Up survives the round trip to within one quantization step.
	got := DecodeNormal(EncodeNormal(m.Up))
	step := 1.0/255 + 1e-12
	if math.Abs(got.X) > step || math.Abs(got.Y) > step || got.Z != 1 {
		t.Errorf("DecodeNormal(EncodeNormal(Up)) = %v", got)
	}
}

func TestVerifyGeneratedMaps(t *testing.T) {
	fields := map[string]*HeightField{
		"random":  randomField(23, 17, 9),
		"step":    stepField(9, 6, 4),
		"flat":    fill(5, 5, 200),
		"single":  fill(1, 1, 7),
		"row":     randomField(12, 1, 10),
		"column":  randomField(1, 12, 11),
		"extreme": {Width: 2, Height: 2, Samples: []uint8{0, 255, 255, 0}},
	}
	for name, hf := range fields {
		t.Run(name, func(t *testing.T) {
			img, err := Generate(context.Background(), hf, Options{Depth: 0.01, Parallel: true})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if bad, worst := Verify(img, UnitTolerance); bad != 0 {
				t.Errorf("Verify = %d bad pixels (worst %g), want 0", bad, worst)
			}
		})
	}
}

func TestVerifyReportsBadPixels(t *testing.T) {
	img, err := Generate(context.Background(), randomField(6, 4, 12), DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// (0,0,0) decodes to length √3; (128,128,128) to a near-zero vector.
	img.SetRGBA(5, 3, color.RGBA{0, 0, 0, 255})
	bad, worst := Verify(img, UnitTolerance)
	if bad != 1 {
		t.Errorf("Verify bad = %d, want 1", bad)
	}
	if want := math.Sqrt(3) - 1; math.Abs(worst-want) > 1e-12 {
		t.Errorf("Verify worst = %g, want %g", worst, want)
	}

	img.SetRGBA(2, 1, color.RGBA{128, 128, 128, 255})
	bad, worst = Verify(img, UnitTolerance)
	if bad != 2 {
		t.Errorf("Verify bad = %d, want 2", bad)
	}
	if worst < 0.99 {
		t.Errorf("Verify worst = %g, want > 0.99", worst)
	}
}

func TestVerifyHonorsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(3, 3, 5, 5))
	for y := 3; y < 5; y++ {
		for x := 3; x < 5; x++ {
			img.SetRGBA(x, y, EncodeNormal(m.Up))
		}
	}
	if bad, _ := Verify(img, UnitTolerance); bad != 0 {
		t.Errorf("Verify on offset image = %d bad, want 0", bad)
	}
}

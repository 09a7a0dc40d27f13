package normalmap

import (
	"math"

	m "github.com/Faultbox/bump2normal/pkg/math"
)

// PixelNormal averages the edge normals incident to (x, y).
//
// Up to four orthogonal and four diagonal edges contribute, depending on how
// many neighbors exist inside the grid. Diagonal normals are divided by √2
// before they are summed. The sum is renormalized and returned together with the
// number of contributions: 3 at corners, 5 along borders and 8 in the interior.
//
// A zero sum has no direction. It happens on a 1x1 grid, or when gradients cancel
// with zero depth. That case yields (0,0,1).
func (t *EdgeTable) PixelNormal(x, y int) (m.Vec3, int) {
	var sum m.Vec3
	n := 0

	hasLeft, hasRight := x > 0, x < t.Width-1
	hasTop, hasBottom := y > 0, y < t.Height-1

	if hasTop {
		sum = sum.Add(t.V(x, y-1))
		n++
	}
	if hasBottom {
		sum = sum.Add(t.V(x, y))
		n++
	}
	if hasLeft {
		sum = sum.Add(t.H(x-1, y))
		n++
	}
	if hasRight {
		sum = sum.Add(t.H(x, y))
		n++
	}
	if hasLeft && hasTop {
		sum = sum.Add(t.DD(x-1, y-1).Div(math.Sqrt2))
		n++
	}
	if hasRight && hasBottom {
		sum = sum.Add(t.DD(x, y).Div(math.Sqrt2))
		n++
	}
	if hasRight && hasTop {
		sum = sum.Add(t.DU(x, y-1).Div(math.Sqrt2))
		n++
	}
	if hasLeft && hasBottom {
		sum = sum.Add(t.DU(x-1, y).Div(math.Sqrt2))
		n++
	}

	if sum.Length() == 0 {
		return m.Up, n
	}
	return sum.Normalize(), n
}

package normalmap

import (
	"image"
	"image/color"
	"math"

	m "github.com/Faultbox/bump2normal/pkg/math"
)

// EncodeChannel maps a normal component from [-1, 1] to [0, 255], rounding half up.
func EncodeChannel(v float64) uint8 {
	c := math.Floor((v+1.0)/2.0*255.0 + 0.5)
	switch {
	case c <= 0 || math.IsNaN(c):
		return 0
	case c >= 255:
		return 255
	}
	return uint8(c)
}

// DecodeChannel maps an encoded byte back to [-1, 1].
func DecodeChannel(c uint8) float64 {
	return float64(c)/255.0*2.0 - 1.0
}

// EncodeNormal packs n as an opaque color: x to red, y to green, z to blue.
func EncodeNormal(n m.Vec3) color.RGBA {
	return color.RGBA{
		R: EncodeChannel(n.X),
		G: EncodeChannel(n.Y),
		B: EncodeChannel(n.Z),
		A: 0xFF,
	}
}

// DecodeNormal is the inverse of EncodeNormal, up to quantization.
func DecodeNormal(c color.RGBA) m.Vec3 {
	return m.Vec3{X: DecodeChannel(c.R), Y: DecodeChannel(c.G), Z: DecodeChannel(c.B)}
}

// UnitTolerance bounds how far the length of a decoded normal may stray from 1.
// Rounding each channel moves a component by at most 1/255, so an encoded unit
// vector decodes to a length within √3/255 of 1.
const UnitTolerance = 0.01

// Verify decodes every pixel of img and counts those whose length differs from
// 1 by more than tol. It also returns the largest deviation seen.
func Verify(img *image.RGBA, tol float64) (bad int, worst float64) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dev := math.Abs(DecodeNormal(img.RGBAAt(x, y)).Length() - 1)
			if dev > worst {
				worst = dev
			}
			if dev > tol {
				bad++
			}
		}
	}
	return bad, worst
}

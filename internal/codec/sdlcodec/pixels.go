package sdlcodec

import (
	"encoding/binary"
	"image"
	"math/bits"

	"github.com/Faultbox/bump2normal/internal/normalmap"
)

// maskFor returns the mask of ch among the R, G, B, A masks.
func maskFor(ch normalmap.Channel, masks [4]uint32) uint32 {
	switch ch {
	case normalmap.ChannelGreen:
		return masks[1]
	case normalmap.ChannelBlue:
		return masks[2]
	case normalmap.ChannelAlpha:
		return masks[3]
	default:
		return masks[0]
	}
}

// packedToNRGBA unpacks 32-bit native-endian pixels into an NRGBA image.
// A zero alpha mask means the format is opaque.
func packedToNRGBA(w, h, pitch int, pix []byte, masks [4]uint32) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			word := binary.NativeEndian.Uint32(pix[y*pitch+x*4:])
			o := out.PixOffset(x, y)
			for i, mask := range masks {
				if mask == 0 {
					out.Pix[o+i] = 0xFF
					continue
				}
				out.Pix[o+i] = uint8((word & mask) >> bits.TrailingZeros32(mask))
			}
		}
	}
	return out
}

// fillRGB24 writes m into a byte-ordered RGB24 buffer with the given pitch.
func fillRGB24(dst []byte, pitch int, m *image.RGBA) {
	b := m.Bounds()
	for y := range b.Dy() {
		row := dst[y*pitch:]
		for x := range b.Dx() {
			c := m.RGBAAt(b.Min.X+x, b.Min.Y+y)
			row[x*3+0] = c.R
			row[x*3+1] = c.G
			row[x*3+2] = c.B
		}
	}
}

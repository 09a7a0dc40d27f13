// Package normalmap turns 8-bit height fields into tangent-space normal maps.
//
// A conversion runs in three steps: extract a HeightField from a decoded raster,
// build an EdgeTable holding one normal per pair of adjacent samples, then average
// the incident edge normals of every pixel and encode the result as a color.
package normalmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/bits"
)

// ErrEmptyRaster is returned when a raster has no pixels.
var ErrEmptyRaster = errors.New("empty raster")

// HeightField is a dense row-major grid of 8-bit height samples.
type HeightField struct {
	Width   int
	Height  int
	Samples []uint8
}

// NewHeightField wraps samples as a w x h height field.
func NewHeightField(w, h int, samples []uint8) (*HeightField, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyRaster, w, h)
	}
	if len(samples) != w*h {
		return nil, fmt.Errorf("sample count mismatch: expected %d, got %d", w*h, len(samples))
	}
	return &HeightField{Width: w, Height: h, Samples: samples}, nil
}

// At returns the sample at (x, y).
func (hf *HeightField) At(x, y int) uint8 {
	return hf.Samples[y*hf.Width+x]
}

// h returns the sample at (x, y) as a float for gradient math.
func (hf *HeightField) h(x, y int) float64 {
	return float64(hf.Samples[y*hf.Width+x])
}

// HeightFieldFromImage extracts one channel of img as heights.
// Pixels are read as non-premultiplied 8-bit RGBA before the channel is selected.
func HeightFieldFromImage(img image.Image, ch Channel) (*HeightField, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyRaster, w, h)
	}

	samples := make([]uint8, 0, w*h)
	switch src := img.(type) {
	case *image.Gray:
		// Every color channel of a gray pixel carries the same value.
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			if ch == ChannelAlpha {
				for range w {
					samples = append(samples, 0xFF)
				}
				continue
			}
			samples = append(samples, src.Pix[off:off+w]...)
		}
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			for x := range w {
				p := src.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
				samples = append(samples, ch.pick(p[0], p[1], p[2], p[3]))
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				samples = append(samples, ch.pick(c.R, c.G, c.B, c.A))
			}
		}
	}

	return &HeightField{Width: w, Height: h, Samples: samples}, nil
}

// HeightFieldFromPacked extracts heights from packed 32-bit pixels in native byte
// order, such as an SDL surface in RGBA8888 format. pitch is the row length in
// bytes. mask selects the 8-bit channel used as height.
func HeightFieldFromPacked(w, h, pitch int, pix []byte, mask uint32) (*HeightField, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyRaster, w, h)
	}
	if mask == 0 {
		return nil, errors.New("zero channel mask")
	}
	if pitch < w*4 {
		return nil, fmt.Errorf("pitch %d too small for width %d", pitch, w)
	}
	if len(pix) < (h-1)*pitch+w*4 {
		return nil, fmt.Errorf("pixel data truncated: need %d bytes, got %d", (h-1)*pitch+w*4, len(pix))
	}

	shift := bits.TrailingZeros32(mask)
	samples := make([]uint8, 0, w*h)
	for y := range h {
		row := pix[y*pitch : y*pitch+w*4]
		for x := range w {
			word := binary.NativeEndian.Uint32(row[x*4 : x*4+4])
			samples = append(samples, uint8((word&mask)>>shift))
		}
	}
	return &HeightField{Width: w, Height: h, Samples: samples}, nil
}

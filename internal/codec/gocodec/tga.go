package gocodec

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types handled by DecodeTGA.
const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaTrueColorRLE = 10
	tgaGrayRLE      = 11
)

var errTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes an uncompressed or RLE TGA image in true-color (24/32 bpp)
// or grayscale (8 bpp). Height maps are often stored as 8-bit grayscale TGA.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}

	gray := imageType == tgaGray || imageType == tgaGrayRLE
	switch {
	case imageType != tgaTrueColor && imageType != tgaTrueColorRLE && !gray:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	case gray && bpp != 8:
		return nil, fmt.Errorf("unsupported grayscale TGA bit depth %d", bpp)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty TGA image %dx%d", width, height)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	// Unpack into tightly packed file-order pixels first, then place rows.
	bytesPerPixel := bpp / 8
	var raw []byte
	var err error
	if imageType == tgaTrueColorRLE || imageType == tgaGrayRLE {
		raw, err = unpackTGARLE(data[offset:], width*height, bytesPerPixel)
		if err != nil {
			return nil, err
		}
	} else {
		n := width * height * bytesPerPixel
		if len(data)-offset < n {
			return nil, errTGATruncated
		}
		raw = data[offset : offset+n]
	}

	rowOf := func(y int) int {
		if topToBottom {
			return y
		}
		return height - 1 - y
	}

	if gray {
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := range height {
			copy(img.Pix[rowOf(y)*img.Stride:], raw[y*width:(y+1)*width])
		}
		return img, nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		dst := img.Pix[rowOf(y)*img.Stride:]
		src := raw[y*width*bytesPerPixel:]
		for x := range width {
			p := src[x*bytesPerPixel:]
			dst[x*4+0] = p[2]
			dst[x*4+1] = p[1]
			dst[x*4+2] = p[0]
			dst[x*4+3] = 0xFF
			if bytesPerPixel == 4 {
				dst[x*4+3] = p[3]
			}
		}
	}
	return img, nil
}

// unpackTGARLE expands RLE packets into count pixels of size bytes each.
func unpackTGARLE(data []byte, count, size int) ([]byte, error) {
	out := make([]byte, 0, count*size)
	i := 0
	for len(out) < count*size {
		if i >= len(data) {
			return nil, errTGATruncated
		}
		packet := data[i]
		i++
		n := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run: one pixel repeated n times.
			if i+size > len(data) {
				return nil, errTGATruncated
			}
			px := data[i : i+size]
			i += size
			for range n {
				out = append(out, px...)
			}
		} else {
			if i+n*size > len(data) {
				return nil, errTGATruncated
			}
			out = append(out, data[i:i+n*size]...)
			i += n * size
		}
	}
	return out[:count*size], nil
}

// Package gocodec implements codec.Codec with pure Go image packages.
//
// Decoding covers PNG, JPEG, GIF, BMP, TIFF, WebP and TGA. A trailing ".zst"
// extension marks a zstd-compressed input.
package gocodec

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/Faultbox/bump2normal/internal/normalmap"
)

// Codec decodes with the standard image registry and encodes BMP with x/image.
type Codec struct{}

// New returns a pure Go codec.
func New() *Codec {
	return &Codec{}
}

// Load decodes path and extracts the height channel.
func (c *Codec) Load(path string, ch normalmap.Channel) (*normalmap.HeightField, error) {
	img, err := c.Decode(path)
	if err != nil {
		return nil, err
	}
	return normalmap.HeightFieldFromImage(img, ch)
}

// Decode reads any supported raster from path.
func (c *Codec) Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	name := path
	if strings.EqualFold(filepath.Ext(name), ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	if strings.EqualFold(filepath.Ext(name), ".tga") {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return DecodeTGA(data)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// Save writes img as a BMP. Opaque RGBA images are stored with 24 bits per pixel.
func (c *Codec) Save(path string, img *image.RGBA) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("encoding BMP: %w", err)
	}
	return w.Flush()
}

// Close is a no-op; the pure Go codec holds no library state.
func (c *Codec) Close() error {
	return nil
}

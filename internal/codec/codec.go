// Package codec defines the image I/O boundary of the converter.
package codec

import (
	"image"

	"github.com/Faultbox/bump2normal/internal/normalmap"
)

// Backend names accepted by configuration.
const (
	BackendGo  = "go"
	BackendSDL = "sdl"
)

// Codec loads height fields and writes normal maps.
type Codec interface {
	// Load decodes the raster at path and extracts ch as heights.
	Load(path string, ch normalmap.Channel) (*normalmap.HeightField, error)
	// Save writes img to path as an uncompressed 24-bit BMP.
	Save(path string, img *image.RGBA) error
	// Close releases any library state held by the codec.
	Close() error
}

// Backends lists the known backend names.
func Backends() []string {
	return []string{BackendGo, BackendSDL}
}

// Valid reports whether name is a known backend.
func Valid(name string) bool {
	for _, b := range Backends() {
		if b == name {
			return true
		}
	}
	return false
}

// Package sdlcodec implements codec.Codec on top of SDL2 and SDL_image.
//
// Inputs are loaded with IMG_Load and converted to RGBA8888, and the height is
// read through the channel mask of that format. Outputs are written with
// SDL_SaveBMP from an RGB24 surface.
package sdlcodec

import (
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/img"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/bump2normal/internal/normalmap"
)

// Codec owns the SDL and SDL_image subsystems for the duration of a run.
// SDL is not safe for concurrent use; callers process one file at a time.
type Codec struct {
	closed bool
}

// New initializes SDL and SDL_image. Only surfaces are used, so no video
// subsystem is started and the codec works headless.
func New() (*Codec, error) {
	if err := sdl.Init(0); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}
	if err := img.Init(img.INIT_PNG | img.INIT_JPG); err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("IMG_Init failed: %w", err)
	}
	return &Codec{}, nil
}

// Load decodes path with SDL_image and extracts ch.
func (c *Codec) Load(path string, ch normalmap.Channel) (*normalmap.HeightField, error) {
	src, err := img.Load(path)
	if err != nil {
		return nil, fmt.Errorf("IMG_Load failed: %w", err)
	}
	defer src.Free()

	surf, err := src.ConvertFormat(uint32(sdl.PIXELFORMAT_RGBA8888), 0)
	if err != nil {
		return nil, fmt.Errorf("converting to RGBA8888: %w", err)
	}
	defer surf.Free()

	if surf.MustLock() {
		if err := surf.Lock(); err != nil {
			return nil, fmt.Errorf("locking surface: %w", err)
		}
		defer surf.Unlock()
	}

	w, h, pitch := int(surf.W), int(surf.H), int(surf.Pitch)
	f := surf.Format
	masks := [4]uint32{f.Rmask, f.Gmask, f.Bmask, f.Amask}

	if ch == normalmap.ChannelLuma {
		return normalmap.HeightFieldFromImage(packedToNRGBA(w, h, pitch, surf.Pixels(), masks), ch)
	}
	return normalmap.HeightFieldFromPacked(w, h, pitch, surf.Pixels(), maskFor(ch, masks))
}

// Save copies img into an RGB24 surface and writes it with SDL_SaveBMP.
func (c *Codec) Save(path string, m *image.RGBA) error {
	b := m.Bounds()
	surf, err := sdl.CreateRGBSurfaceWithFormat(0, int32(b.Dx()), int32(b.Dy()), 24, uint32(sdl.PIXELFORMAT_RGB24))
	if err != nil {
		return fmt.Errorf("creating output surface: %w", err)
	}
	defer surf.Free()

	if surf.MustLock() {
		if err := surf.Lock(); err != nil {
			return fmt.Errorf("locking surface: %w", err)
		}
	}
	fillRGB24(surf.Pixels(), int(surf.Pitch), m)
	if surf.MustLock() {
		surf.Unlock()
	}

	if err := surf.SaveBMP(path); err != nil {
		return fmt.Errorf("SDL_SaveBMP failed: %w", err)
	}
	return nil
}

// Close shuts down SDL_image and SDL. It is safe to call more than once.
func (c *Codec) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	img.Quit()
	sdl.Quit()
	return nil
}

// Package frame composes the clock face into the bytes each LED module displays.
//
// The face is drawn onto a 32x8 framebuffer, left-aligned: eight 3-column glyphs with a blank
// column between neighbors use columns 0 through 30, and column 31 is always dark.  Each
// framebuffer row is packed into a uint32 with column 0 in the most significant bit, and the
// rows are then cut into one byte per module per row.
package frame

import (
	"image"
	"strings"

	"github.com/jrockway/matrix-clock/control/clock"
	"github.com/jrockway/matrix-clock/control/font3x8"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	// Devices is the number of 8x8 modules in the chain.
	Devices = 4
	// Rows is the height of the framebuffer and of each module.
	Rows = 8
	// Cols is the width of the framebuffer.
	Cols = 32
	// GlyphsPerFace is the number of glyphs in HH:MM:SS.
	GlyphsPerFace = 8
)

// Framebuffer is one frame.  Bit 31-c of row r is the pixel at column c.
type Framebuffer [Rows]uint32

// DeviceBuffer is the image for one module: one byte per row, most significant bit leftmost.
type DeviceBuffer [Rows]byte

// Glyphs returns the glyph indexes that spell out the time.
func Glyphs(s clock.State) [GlyphsPerFace]int {
	return [GlyphsPerFace]int{
		int(s.Hours / 10), int(s.Hours % 10),
		font3x8.Colon,
		int(s.Mins / 10), int(s.Mins % 10),
		font3x8.Colon,
		int(s.Secs / 10), int(s.Secs % 10),
	}
}

// Render draws glyphs onto a fresh framebuffer.  Pixels that would land past the right edge are
// dropped.
func Render(glyphs [GlyphsPerFace]int) Framebuffer {
	img := image.NewGray(image.Rect(0, 0, Cols, Rows))
	text := new(strings.Builder)
	for _, g := range glyphs {
		text.WriteRune(font3x8.Rune(g))
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: font3x8.Face,
		Dot:  fixed.P(0, font3x8.Height),
	}
	drawer.DrawString(text.String())

	var fb Framebuffer
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if img.GrayAt(c, r).Y != 0 {
				fb[r] |= 1 << (Cols - 1 - c)
			}
		}
	}
	return fb
}

// Slice cuts the framebuffer into per-module images.  Device 0 gets the most significant byte of
// every row (columns 0-7) and device 3 the least significant (columns 24-31); this matches the
// order the modules are chained in.
func Slice(fb Framebuffer) [Devices]DeviceBuffer {
	var result [Devices]DeviceBuffer
	for d := 0; d < Devices; d++ {
		shift := 24 - 8*d
		for r := 0; r < Rows; r++ {
			result[d][r] = byte((fb[r] >> shift) & 0xff)
		}
	}
	return result
}

// Compose returns the per-module images that display s.
func Compose(s clock.State) [Devices]DeviceBuffer {
	return Slice(Render(Glyphs(s)))
}

// Package font3x8 is a 3x8 pixel font containing only what a clock face needs: the digits and a
// colon.  The glyphs are seven pixels tall with an empty top row.
package font3x8

import (
	"image"

	"golang.org/x/image/font/basicfont"
)

const (
	// Width and Height are the size of one glyph in pixels.
	Width  = 3
	Height = 8

	// Colon is the glyph index of the separator; indexes 0-9 are the digits.
	Colon = 10

	// NumGlyphs is the number of glyphs in Mask3x8.
	NumGlyphs = 11
)

const (
	o = 0x00
	x = 0xff
)

// Mask3x8 holds every glyph, stacked vertically in index order.  The glyph for index i occupies
// rows [i*Height, (i+1)*Height).  Digits and the colon are contiguous in ASCII, so glyph i is also
// the rune '0'+i.
var Mask3x8 = &image.Alpha{
	Stride: Width,
	Rect:   image.Rect(0, 0, Width, NumGlyphs*Height),
	Pix: []byte{
		// '0'
		o, o, o,
		x, x, x,
		x, o, x,
		x, o, x,
		x, o, x,
		x, o, x,
		x, o, x,
		x, x, x,

		// '1'
		o, o, o,
		o, x, o,
		x, x, o,
		o, x, o,
		o, x, o,
		o, x, o,
		o, x, o,
		x, x, x,

		// '2'
		o, o, o,
		x, x, x,
		o, o, x,
		o, o, x,
		x, x, x,
		x, o, o,
		x, o, o,
		x, x, x,

		// '3'
		o, o, o,
		x, x, x,
		o, o, x,
		o, o, x,
		x, x, x,
		o, o, x,
		o, o, x,
		x, x, x,

		// '4'
		o, o, o,
		x, o, x,
		x, o, x,
		x, o, x,
		x, x, x,
		o, o, x,
		o, o, x,
		o, o, x,

		// '5'
		o, o, o,
		x, x, x,
		x, o, o,
		x, o, o,
		x, x, x,
		o, o, x,
		o, o, x,
		x, x, x,

		// '6'
		o, o, o,
		x, x, x,
		x, o, o,
		x, o, o,
		x, x, x,
		x, o, x,
		x, o, x,
		x, x, x,

		// '7'
		o, o, o,
		x, x, x,
		o, o, x,
		o, o, x,
		o, x, o,
		o, x, o,
		o, x, o,
		o, x, o,

		// '8'
		o, o, o,
		x, x, x,
		x, o, x,
		x, o, x,
		x, x, x,
		x, o, x,
		x, o, x,
		x, x, x,

		// '9'
		o, o, o,
		x, x, x,
		x, o, x,
		x, o, x,
		x, x, x,
		o, o, x,
		o, o, x,
		x, x, x,

		// ':'
		o, o, o,
		o, o, o,
		o, o, o,
		o, x, o,
		o, o, o,
		o, x, o,
		o, o, o,
		o, o, o,
	},
}

// Face draws Mask3x8 with a font.Drawer.  Each glyph advances the dot by one column more than its
// width, leaving a blank column between glyphs.
var Face = &basicfont.Face{
	Advance: Width + 1,
	Width:   Width,
	Height:  Height,
	Ascent:  Height,
	Descent: 0,
	Mask:    Mask3x8,
	Ranges: []basicfont.Range{
		{Low: '0', High: '0' + NumGlyphs, Offset: 0},
	},
}

// Rune returns the rune that draws glyph index i.
func Rune(i int) rune {
	return '0' + rune(i)
}

// Set reports whether the pixel at row r, column c of glyph i is lit.
func Set(i, r, c int) bool {
	return Mask3x8.AlphaAt(c, i*Height+r).A != 0
}

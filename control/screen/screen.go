// Package screen draws images to my display, and retains them for debugging the rest of the program
// without the display attached.
package screen

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync"

	"github.com/jrockway/matrix-clock/control/frame"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/max7219"
)

const (
	rows                = frame.Rows
	cols                = 8
	panels              = frame.Devices
	previewScale        = 20 // Size of one pixel in the rendered image.
	previewPixelBorder  = 10 // Border around right and bottom of pixel, to simulate pixel spacing.
	previewPanelSpacing = 20 // Border between panels.
)

var (
	litColor   = color.NRGBA{R: 0xff, G: 0x30, B: 0x10, A: 0xff}
	unlitColor = color.NRGBA{R: 0x30, G: 0x08, B: 0x08, A: 0xff}
)

// Screen represents the particular display I built for this project.  It consists of 4 8x8
// single-color LED modules, each driven by a MAX7219, daisy-chained on one SPI bus.  Device 0
// shows the leftmost 8 columns of the framebuffer.  In each row byte the most significant bit is
// the leftmost LED.
//
// Row byte r is sent to digit register r+1, so row 0 is the top row of each module.  The max7219
// driver sends a unit's bytes last-first, so WriteDevice reverses them before handing them over.
type Screen struct {
	leds *max7219.Dev

	imageMu sync.Mutex
	image   *image.NRGBA // must hold imageMu to read or write.
}

// NewScreen returns an initialized Screen object.  With a nil port, nothing is sent to hardware and
// only the preview image is kept.
func NewScreen(p spi.Port, intensity byte) (*Screen, error) {
	s := &Screen{
		image: image.NewNRGBA(image.Rect(0, 0, (panels-1)*previewPanelSpacing+panels*cols*(previewScale+previewPixelBorder), rows*(previewScale+previewPixelBorder))),
	}
	for d := 0; d < panels; d++ {
		s.updateCurrentImage(d, frame.DeviceBuffer{})
	}
	if p == nil {
		return s, nil
	}
	leds, err := max7219.NewSPI(p, panels, rows)
	if err != nil {
		return nil, fmt.Errorf("init max7219 chain: %w", err)
	}
	if err := leds.SetIntensity(intensity); err != nil {
		return nil, fmt.Errorf("set max7219 intensity: %w", err)
	}
	s.leds = leds
	return s, nil
}

// Blank turns off every LED.
func (s *Screen) Blank() error {
	for d := 0; d < panels; d++ {
		if err := s.WriteDevice(d, frame.DeviceBuffer{}); err != nil {
			return fmt.Errorf("blank display: %w", err)
		}
	}
	return nil
}

// ServeHTTP serves the current image as a PNG.
func (s *Screen) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Add("content-type", "image/png")
	w.WriteHeader(http.StatusOK)
	s.imageMu.Lock()
	defer s.imageMu.Unlock()
	if err := png.Encode(w, s.image); err != nil {
		log.WithError(err).Error("encoding preview image")
	}
}

// previewOrigin returns the top-left corner of the preview square for the LED at column x, row y
// of the framebuffer.
func previewOrigin(x, y int) image.Point {
	scale := previewPixelBorder + previewScale
	xOff := (x / cols) * previewPanelSpacing
	return image.Pt(xOff+scale*x, scale*y)
}

// updateCurrentImage updates the image data that will be returned via the web interface.
func (s *Screen) updateCurrentImage(device int, data frame.DeviceBuffer) {
	s.imageMu.Lock()
	defer s.imageMu.Unlock()
	for y := 0; y < rows; y++ {
		for i := 0; i < cols; i++ {
			c := unlitColor
			if data[y]&(0x80>>i) != 0 {
				c = litColor
			}
			o := previewOrigin(device*cols+i, y)
			for destX := o.X; destX < o.X+previewScale; destX++ {
				for destY := o.Y; destY < o.Y+previewScale; destY++ {
					s.image.SetNRGBA(destX, destY, c)
				}
			}
		}
	}
}

// WriteDevice displays data on one module.
func (s *Screen) WriteDevice(device int, data frame.DeviceBuffer) error {
	if device < 0 || device >= panels {
		return fmt.Errorf("no display device %d", device)
	}
	s.updateCurrentImage(device, data)
	if s.leds == nil {
		return nil
	}
	var wire [rows]byte
	for r := range data {
		wire[rows-1-r] = data[r]
	}
	if err := s.leds.WriteCascadedUnit(device, wire[:]); err != nil {
		return fmt.Errorf("write to max7219 unit %d: %w", device, err)
	}
	return nil
}

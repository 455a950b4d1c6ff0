package screen

import (
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrockway/matrix-clock/control/clock"
	"github.com/jrockway/matrix-clock/control/frame"
	"periph.io/x/conn/v3/spi/spitest"
)

func preview(t *testing.T, s *Screen) image.Image {
	t.Helper()
	req := httptest.NewRequest("GET", "/display.png", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("serve preview: response code:\n  got: %v\n want: %v", got, want)
	}
	if got, want := rec.Header().Get("content-type"), "image/png"; got != want {
		t.Errorf("serve preview: content type:\n  got: %v\n want: %v", got, want)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	return img
}

func lit(img image.Image, x, y int) bool {
	o := previewOrigin(x, y)
	want := color.NRGBAModel.Convert(litColor)
	return color.NRGBAModel.Convert(img.At(o.X+previewScale/2, o.Y+previewScale/2)) == want
}

func TestPreviewMatchesFramebuffer(t *testing.T) {
	s, err := NewScreen(nil, 1)
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	st := clock.Initial()
	for d, buf := range frame.Compose(st) {
		if err := s.WriteDevice(d, buf); err != nil {
			t.Fatalf("write device %d: %v", d, err)
		}
	}
	fb := frame.Render(frame.Glyphs(st))
	img := preview(t, s)
	for y := 0; y < rows; y++ {
		for x := 0; x < frame.Cols; x++ {
			if got, want := lit(img, x, y), fb[y]&(1<<(frame.Cols-1-x)) != 0; got != want {
				t.Errorf("preview pixel (%d, %d):\n  got: %v\n want: %v", x, y, got, want)
			}
		}
	}

	if err := s.Blank(); err != nil {
		t.Fatalf("blank: %v", err)
	}
	img = preview(t, s)
	for y := 0; y < rows; y++ {
		for x := 0; x < frame.Cols; x++ {
			if lit(img, x, y) {
				t.Errorf("pixel (%d, %d) lit after blank", x, y)
			}
		}
	}
}

func TestWriteDeviceRange(t *testing.T) {
	s, err := NewScreen(nil, 1)
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	for _, d := range []int{-1, frame.Devices} {
		if err := s.WriteDevice(d, frame.DeviceBuffer{}); err == nil {
			t.Errorf("device %d: expected error", d)
		}
	}
}

func TestWriteDeviceRowOrder(t *testing.T) {
	rec := &spitest.Record{}
	s, err := NewScreen(rec, 1)
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	mark := len(rec.Ops)
	buf := frame.DeviceBuffer{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	if err := s.WriteDevice(1, buf); err != nil {
		t.Fatalf("write device: %v", err)
	}
	ops := rec.Ops[mark:]
	if got, want := len(ops), rows; got != want {
		t.Fatalf("spi transactions:\n  got: %v\n want: %v", got, want)
	}
	// Units are shifted out last-first, so unit 1's register/data pair sits at index 2 of 4.
	const at = (panels - 1 - 1) * 2
	for i, op := range ops {
		want := make([]byte, panels*2)
		want[at] = byte(i + 1)
		want[at+1] = buf[i]
		if got := op.W; string(got) != string(want) {
			t.Errorf("transaction %d:\n  got: % x\n want: % x", i, got, want)
		}
	}
}

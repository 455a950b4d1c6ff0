package config

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clock.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if got, want := cfg.Bind, DefaultBind; got != want {
		t.Errorf("bind:\n  got: %v\n want: %v", got, want)
	}
	if got, want := cfg.Button.Pin, DefaultButtonPin; got != want {
		t.Errorf("button pin:\n  got: %v\n want: %v", got, want)
	}
	if got, want := *cfg.Display.Intensity, uint8(DefaultIntensity); got != want {
		t.Errorf("intensity:\n  got: %v\n want: %v", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := write(t, `
bind: "127.0.0.1:9090"
display:
  spi: "/dev/spidev1.0"
  intensity: 0
button:
  pin: "P9_12"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := cfg.Bind, "127.0.0.1:9090"; got != want {
		t.Errorf("bind:\n  got: %v\n want: %v", got, want)
	}
	if got, want := cfg.Display.SPI, "/dev/spidev1.0"; got != want {
		t.Errorf("spi:\n  got: %v\n want: %v", got, want)
	}
	// An explicit zero is kept rather than replaced by the default.
	if got, want := *cfg.Display.Intensity, uint8(0); got != want {
		t.Errorf("intensity:\n  got: %v\n want: %v", got, want)
	}
	if got, want := cfg.Button.Pin, "P9_12"; got != want {
		t.Errorf("button pin:\n  got: %v\n want: %v", got, want)
	}
	if got, want := cfg.LED.Pin, DefaultLEDPin; got != want {
		t.Errorf("led pin:\n  got: %v\n want: %v", got, want)
	}
}

func TestLoadErrors(t *testing.T) {
	testData := []struct {
		name    string
		content string
	}{
		{"bad yaml", "bind: [\n"},
		{"intensity too high", "display:\n  intensity: 16\n"},
		{"shared pin", "button:\n  pin: GPIO4\nled:\n  pin: GPIO4\n"},
	}
	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Load(write(t, test.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
}

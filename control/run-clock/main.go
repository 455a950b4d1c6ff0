package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrockway/matrix-clock/control/board"
	"github.com/jrockway/matrix-clock/control/clock"
	"github.com/jrockway/matrix-clock/control/config"
	"github.com/jrockway/matrix-clock/control/scheduler"
	"github.com/jrockway/matrix-clock/control/screen"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	utilclock "k8s.io/utils/clock"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	_ "golang.org/x/net/trace" // Serves /debug/requests and /debug/events.
)

var (
	configFile = flag.String("config", "", "yaml file describing how the clock is wired; empty for defaults")
	bind       = flag.String("bind", "", "address to bind for debug/metrics server; overrides the config file")
	spiName    = flag.String("spi", "", "spi bus that the display is on; overrides the config file")
	preview    = flag.Bool("preview", false, "run without display hardware; only the preview image is updated")
)

func main() {
	flag.Parse()
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bind":
			cfg.Bind = *bind
		case "spi":
			cfg.Display.SPI = *spiName
		case "preview":
			cfg.Display.PreviewOnly = *preview
		}
	})

	if _, err := host.Init(); err != nil {
		log.Fatalf("init periph.io: %v", err)
	}

	// The LED comes first, since it is how we report every other failure.
	ledPin := gpioreg.ByName(cfg.LED.Pin)
	if ledPin == nil {
		log.Fatalf("no such gpio pin %q for led", cfg.LED.Pin)
	}
	led, err := board.NewLED(ledPin)
	if err != nil {
		log.Fatalf("init led: %v", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// halt blinks the LED until someone sends a signal, then exits.  The clock never runs with
	// hardware it couldn't set up.
	halt := func(err error) {
		log.WithError(err).Error("clock cannot run; halting")
		if err := led.Distress(sigCtx); !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("distress blink")
		}
		os.Exit(1)
	}

	var port spi.PortCloser
	if !cfg.Display.PreviewOnly {
		port, err = spireg.Open(cfg.Display.SPI)
		if err != nil {
			halt(fmt.Errorf("open spi port %q: %w", cfg.Display.SPI, err))
		}
		defer port.Close()
	}
	leds, err := screen.NewScreen(port, *cfg.Display.Intensity)
	if err != nil {
		halt(fmt.Errorf("init screen: %w", err))
	}
	if err := leds.Blank(); err != nil {
		halt(fmt.Errorf("blank screen: %w", err))
	}

	buttonPin := gpioreg.ByName(cfg.Button.Pin)
	if buttonPin == nil {
		halt(fmt.Errorf("no such gpio pin %q for button", cfg.Button.Pin))
	}
	button, err := board.NewButton(buttonPin)
	if err != nil {
		halt(fmt.Errorf("init button: %w", err))
	}

	alarm := board.NewOneShot(utilclock.RealClock{})
	sched := scheduler.New(leds, button, alarm, led)
	defer sched.Close()

	http.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/display.png", http.StatusFound)
	})
	http.Handle("/display.png", leds)
	http.Handle("/metrics", promhttp.Handler())
	httpServer := &http.Server{Addr: cfg.Bind}

	eg, ctx := errgroup.WithContext(sigCtx)
	eg.Go(func() error {
		log.WithField("display", cfg.Display.SPI).Info("clock running")
		return sched.Run(ctx)
	})
	eg.Go(func() error {
		return clock.Tick(ctx, utilclock.RealClock{}, func() bool { return sched.Pend(scheduler.Tick) })
	})
	eg.Go(func() error {
		return button.Watch(ctx, func() bool { return sched.Pend(scheduler.ButtonEdge) })
	})
	eg.Go(func() error {
		log.Printf("http server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		tctx, c := context.WithTimeout(context.Background(), time.Second)
		defer c()
		return httpServer.Shutdown(tctx)
	})
	err = eg.Wait()
	alarm.Stop()

	// Blank all digits when exiting, just so someone looking at the clock can tell whether the
	// OS crashed or we just exited the program for some reason.
	if err := leds.Blank(); err != nil {
		log.WithError(err).Error("blank screen on exit")
	}
	log.WithField("time", sched.Snapshot().String()).WithError(err).Info("clock stopped")

	if sigCtx.Err() == nil {
		// Nobody asked us to stop, so something broke.
		halt(err)
	}
}

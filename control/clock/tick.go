package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	utilclock "k8s.io/utils/clock"
)

var (
	missedTicksCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "missed_ticks",
		Help: "count of ticks that were generated while the previous tick was still pending",
	})

	tickDelayMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tick_delay",
		Help:    "amount of time between seconds tick and when it is handed to the scheduler, in nanoseconds",
		Buckets: prometheus.ExponentialBuckets(1000, 10, 20),
	})
)

// Tick calls fire at the exact instant that the seconds change, acting as the clock's 1Hz timer
// interrupt.  fire reports whether the tick was accepted; a tick that lands while the previous one
// is still pending is dropped by the receiver and counted in missedTicksCounter.  Cancelling the
// context causes this to return immediately.
func Tick(ctx context.Context, clk utilclock.Clock, fire func() bool) error {
	for {
		nextSecond := clk.Now().Add(time.Second).Truncate(time.Second)

		// Wait until the next second starts.
		select {
		case <-clk.After(nextSecond.Sub(clk.Now())):
		case <-ctx.Done():
			return fmt.Errorf("waiting for next second: %w", ctx.Err())
		}

		if !fire() {
			missedTicksCounter.Inc()
			continue
		}
		tickDelayMetric.Observe(float64(clk.Since(nextSecond).Nanoseconds()))
	}
}

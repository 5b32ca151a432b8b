// Package monitor drives the periodic sampling loop: fetch a reading,
// persist it, log it, sleep out the remainder of the period.
package monitor

import (
	"context"
	"sync"
	"time"

	"device_monitor/internal/logger"
	"device_monitor/internal/models"
)

// Defaults applied by New when Config leaves them zero.
const (
	defaultPeriod = 2 * time.Second

	// defaultMinSleep is the floor applied when a cycle overruns the period,
	// so a slow cycle compresses the sleep but never turns it negative or
	// into a busy spin.
	defaultMinSleep = 100 * time.Millisecond
)

// DeviceClient is the slice of the device client the monitor drives.
type DeviceClient interface {
	Connect() error
	Disconnect()
	FetchReading() (models.Reading, error)
}

// ReadingStore is the persistence sink for completed readings.
type ReadingStore interface {
	Append(models.Reading) error
}

// Config tunes the loop.
type Config struct {
	Period   time.Duration
	MinSleep time.Duration
}

// Monitor owns the client lifecycle: connect once, fetch repeatedly,
// disconnect on exit or fatal error. One goroutine; no concurrent polls.
type Monitor struct {
	client   DeviceClient
	store    ReadingStore
	log      *logger.Logger
	period   time.Duration
	minSleep time.Duration

	mu        sync.RWMutex
	latest    models.Reading
	hasLatest bool
}

// New builds a monitor. The logger and cancellation context are supplied by
// the caller; the monitor holds no ambient global state.
func New(client DeviceClient, store ReadingStore, log *logger.Logger, cfg Config) *Monitor {
	if cfg.Period <= 0 {
		cfg.Period = defaultPeriod
	}
	if cfg.MinSleep <= 0 {
		cfg.MinSleep = defaultMinSleep
	}
	return &Monitor{
		client:   client,
		store:    store,
		log:      log,
		period:   cfg.Period,
		minSleep: cfg.MinSleep,
	}
}

// Latest returns the most recent reading of this run, if any. Safe for
// concurrent use by read-only consumers such as the HTTP layer.
func (m *Monitor) Latest() (models.Reading, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.hasLatest
}

func (m *Monitor) setLatest(r models.Reading) {
	m.mu.Lock()
	m.latest = r
	m.hasLatest = true
	m.mu.Unlock()
}

// Run connects and polls until ctx is canceled or the connection is lost.
// An ERROR-status reading is a warning and the loop continues; an error
// returned by Connect or FetchReading is a confirmed connection failure and
// terminates the loop (fail-fast; restarts belong to an external
// supervisor). Cancellation is honored at cycle boundaries only, never mid
// exchange.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.client.Connect(); err != nil {
		m.log.Errorw("device connect failed", "err", err)
		return err
	}
	defer m.cleanup()

	m.log.Infow("monitoring started", "period", m.period)

	for {
		select {
		case <-ctx.Done():
			m.log.Infow("shutdown requested, stopping monitor")
			return nil
		default:
		}

		start := time.Now()

		reading, err := m.client.FetchReading()
		if err != nil {
			m.log.Errorw("connection to device lost, terminating", "err", err)
			return err
		}

		m.setLatest(reading)

		if err := m.store.Append(reading); err != nil {
			m.log.Errorw("reading log write failed", "err", err)
		}

		if reading.OK() {
			m.log.Infow("reading",
				"voltage", reading.Voltage,
				"current", reading.Current,
				"serial", reading.Serial,
			)
		} else {
			m.log.Warnw("reading failed",
				"err", reading.Error,
				"voltage", reading.Voltage,
				"current", reading.Current,
			)
		}

		select {
		case <-ctx.Done():
			m.log.Infow("shutdown requested, stopping monitor")
			return nil
		case <-time.After(m.sleepFor(time.Since(start))):
		}
	}
}

// sleepFor returns the inter-cycle sleep: the period minus the elapsed cycle
// time, floored at minSleep.
func (m *Monitor) sleepFor(elapsed time.Duration) time.Duration {
	sleep := m.period - elapsed
	if sleep < m.minSleep {
		return m.minSleep
	}
	return sleep
}

func (m *Monitor) cleanup() {
	m.client.Disconnect()
	m.log.Infow("monitor stopped")
}

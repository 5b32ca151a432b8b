package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"device_monitor/internal/device"
	"device_monitor/internal/logger"
	"device_monitor/internal/models"
)

// scriptedClient satisfies DeviceClient with canned per-call results.
type scriptedClient struct {
	connectErr error
	results    []fetchResult // cycled when exhausted

	mu          sync.Mutex
	fetches     int
	disconnects int
}

type fetchResult struct {
	reading models.Reading
	err     error
}

func (c *scriptedClient) Connect() error { return c.connectErr }

func (c *scriptedClient) Disconnect() {
	c.mu.Lock()
	c.disconnects++
	c.mu.Unlock()
}

func (c *scriptedClient) FetchReading() (models.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.results[c.fetches%len(c.results)]
	c.fetches++
	return res.reading, res.err
}

func (c *scriptedClient) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

// recordingStore collects appended readings.
type recordingStore struct {
	mu       sync.Mutex
	appended []models.Reading
	err      error
}

func (s *recordingStore) Append(r models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, r)
	return s.err
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appended)
}

func okReading() models.Reading {
	return models.Reading{
		Timestamp: "2026-08-31T12:00:00Z",
		Voltage:   "V_12V",
		Current:   "A_1A",
		Serial:    "S_DSA123",
		Status:    models.StatusOK,
	}
}

func errorReading() models.Reading {
	return models.Reading{
		Timestamp: "2026-08-31T12:00:02Z",
		Voltage:   models.VoltageErrorToken,
		Current:   models.CurrentErrorToken,
		Serial:    models.SerialErrorToken,
		Status:    models.StatusError,
		Error:     "device: timeout waiting for response to GET_V",
	}
}

func fastConfig() Config {
	return Config{Period: 5 * time.Millisecond, MinSleep: time.Millisecond}
}

func TestMonitor_ConnectFailureIsFatal(t *testing.T) {
	t.Parallel()

	wantErr := &device.ConnectionError{Reason: "probe rejected"}
	client := &scriptedClient{connectErr: wantErr}
	store := &recordingStore{}

	m := New(client, store, logger.NewNop(), fastConfig())
	err := m.Run(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run = %v, want the connect error", err)
	}
	if client.fetchCount() != 0 {
		t.Error("no fetch may happen when connect fails")
	}
	if store.count() != 0 {
		t.Error("nothing may be persisted when connect fails")
	}
}

func TestMonitor_ErrorReadingIsNotFatal(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{results: []fetchResult{
		{reading: okReading()},
		{reading: errorReading()},
	}}
	store := &recordingStore{}
	m := New(client, store, logger.NewNop(), fastConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run must end cleanly on cancellation, got %v", err)
	}
	if client.fetchCount() < 3 {
		t.Fatalf("loop must continue past ERROR readings, saw %d fetches", client.fetchCount())
	}
	if store.count() != client.fetchCount() {
		t.Errorf("every reading must be persisted: %d fetched, %d stored", client.fetchCount(), store.count())
	}
	if client.disconnects == 0 {
		t.Error("client must be disconnected on shutdown")
	}
}

func TestMonitor_LostConnectionIsFatal(t *testing.T) {
	t.Parallel()

	lost := &device.ConnectionError{Reason: "not connected"}
	client := &scriptedClient{results: []fetchResult{
		{reading: okReading()},
		{err: lost},
	}}
	store := &recordingStore{}
	m := New(client, store, logger.NewNop(), fastConfig())

	err := m.Run(context.Background())
	if !errors.Is(err, lost) {
		t.Fatalf("Run = %v, want the connection error", err)
	}
	if client.fetchCount() != 2 {
		t.Errorf("loop must stop on the failing fetch, saw %d fetches", client.fetchCount())
	}
	if client.disconnects == 0 {
		t.Error("client must be disconnected on fatal exit")
	}
}

func TestMonitor_StoreFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{results: []fetchResult{{reading: okReading()}}}
	store := &recordingStore{err: errors.New("disk full")}
	m := New(client, store, logger.NewNop(), fastConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run must survive store failures, got %v", err)
	}
	if client.fetchCount() < 2 {
		t.Errorf("loop must continue past store failures, saw %d fetches", client.fetchCount())
	}
}

func TestMonitor_Latest(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{results: []fetchResult{{reading: okReading()}}}
	m := New(client, &recordingStore{}, logger.NewNop(), fastConfig())

	if _, ok := m.Latest(); ok {
		t.Fatal("no reading may be reported before the first poll")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, ok := m.Latest()
	if !ok {
		t.Fatal("latest reading must be available after polling")
	}
	if got != okReading() {
		t.Errorf("latest = %+v", got)
	}
}

func TestMonitor_SleepFloor(t *testing.T) {
	t.Parallel()

	m := New(&scriptedClient{results: []fetchResult{{reading: okReading()}}},
		&recordingStore{}, logger.NewNop(),
		Config{Period: 2 * time.Second, MinSleep: 100 * time.Millisecond})

	cases := []struct {
		name    string
		elapsed time.Duration
		want    time.Duration
	}{
		{"fast cycle sleeps the remainder", 500 * time.Millisecond, 1500 * time.Millisecond},
		{"exact cycle sleeps the floor", 2 * time.Second, 100 * time.Millisecond},
		{"overrunning cycle sleeps the floor, never negative", 2500 * time.Millisecond, 100 * time.Millisecond},
	}

	for _, tc := range cases {
		if got := m.sleepFor(tc.elapsed); got != tc.want {
			t.Errorf("%s: sleepFor(%v) = %v, want %v", tc.name, tc.elapsed, got, tc.want)
		}
	}
}

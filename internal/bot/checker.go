package bot

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"device_monitor/internal/device"
	"device_monitor/internal/logger"
	"device_monitor/internal/models"
)

// Checker performs one-shot device probes for the bot: connect, fetch a
// reading, disconnect. Each check builds a fresh client so a broken probe
// never leaves state behind for the next one.
type Checker struct {
	cfg device.Config
	log *logger.Logger
}

// NewChecker builds a checker for the configured device endpoint.
func NewChecker(cfg device.Config, log *logger.Logger) *Checker {
	return &Checker{cfg: cfg, log: log}
}

// Check probes the device once and returns a user-facing report. ok is
// false only when the device could not be reached at all; an ERROR-status
// reading still counts as reachable.
func (c *Checker) Check() (ok bool, report string) {
	checkID := uuid.NewString()

	client, err := device.NewClient(c.cfg, c.log)
	if err != nil {
		c.log.Errorw("device check misconfigured", "check_id", checkID, "err", err)
		return false, "Configuration error: " + err.Error()
	}

	if err := client.Connect(); err != nil {
		c.log.Warnw("device check failed", "check_id", checkID, "err", err)
		return false, connectFailureMessage(err, c.cfg)
	}
	defer client.Disconnect()

	reading, err := client.FetchReading()
	if err != nil {
		// Only possible if the link dropped between connect and fetch.
		c.log.Warnw("device check lost connection", "check_id", checkID, "err", err)
		return false, connectFailureMessage(err, c.cfg)
	}

	c.log.Infow("device check completed", "check_id", checkID, "status", reading.Status)
	return true, readingMessage(reading)
}

// Info returns a summary of the configured endpoint.
func (c *Checker) Info() string {
	switch c.cfg.Interface {
	case device.InterfaceSerial, device.InterfaceCOM:
		return fmt.Sprintf(
			"Device configuration:\n- interface: serial\n- port: %s\n- baudrate: %d\n- timeout: %s",
			c.cfg.SerialPort, c.cfg.Baudrate, c.cfg.Timeout,
		)
	default:
		return fmt.Sprintf(
			"Device configuration:\n- interface: %s\n- endpoint: %s:%d\n- timeout: %s",
			c.cfg.Interface, c.cfg.Host, c.cfg.Port, c.cfg.Timeout,
		)
	}
}

// readingMessage formats a fetched reading for the chat.
func readingMessage(r models.Reading) string {
	if r.OK() {
		return fmt.Sprintf(
			"✅ Device reachable\n\nReadings:\n- voltage: %s\n- current: %s\n- serial: %s\n\nAt %s",
			r.Voltage, r.Current, r.Serial, r.Timestamp,
		)
	}
	return fmt.Sprintf(
		"⚠️ Device responded with an error: %s\n\nReadings:\n- voltage: %s\n- current: %s",
		r.Error, r.Voltage, r.Current,
	)
}

// connectFailureMessage maps a failed probe to a user-facing explanation.
func connectFailureMessage(err error, cfg device.Config) string {
	var te *device.TimeoutError
	if errors.As(err, &te) {
		return fmt.Sprintf("❌ Device not responding (timeout %s)", cfg.Timeout)
	}
	return "❌ Cannot reach device: " + err.Error()
}

package device

import (
	"fmt"
	"strings"
	"time"

	"device_monitor/internal/logger"
	"device_monitor/internal/models"
)

// Interface selectors for Config. "com" aliases the serial line.
const (
	InterfaceUDP    = "udp"
	InterfaceSerial = "serial"
	InterfaceCOM    = "com"
)

// Config selects and parameterizes the transport a client talks through.
// Exactly one transport is instantiated per client.
type Config struct {
	Interface  string // udp | serial | com
	Host       string
	Port       int
	SerialPort string
	Baudrate   int
	Timeout    time.Duration
}

// Client is the device-facing API used by the monitor loop, the bot and the
// one-shot test mode. It owns a single transport and tracks the connection
// through it.
type Client struct {
	transport Transport
	log       *logger.Logger
}

// NewClient builds a client for the transport named by cfg.Interface.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	var tr Transport
	switch strings.ToLower(cfg.Interface) {
	case InterfaceUDP:
		tr = NewUDPTransport(cfg.Host, cfg.Port, cfg.Timeout, log)
	case InterfaceSerial, InterfaceCOM:
		tr = NewSerialTransport(cfg.SerialPort, cfg.Baudrate, cfg.Timeout, log)
	default:
		return nil, fmt.Errorf("device: unsupported interface %q", cfg.Interface)
	}
	return &Client{transport: tr, log: log}, nil
}

// Connect establishes the transport link. Failures propagate unmodified;
// retry policy belongs to the caller.
func (c *Client) Connect() error {
	return c.transport.Connect()
}

// Disconnect releases the transport link. Idempotent.
func (c *Client) Disconnect() {
	c.transport.Disconnect()
}

// Connected reports whether the transport considers the link up.
func (c *Client) Connected() bool {
	return c.transport.Connected()
}

// FetchReading polls voltage, current and serial number in fixed order and
// returns one complete reading. The returned error is non-nil only when the
// client is not connected. Any failure during the command sequence is
// swallowed into an ERROR-status reading with sentinel tokens: a single bad
// poll must never bring down the polling loop.
func (c *Client) FetchReading() (models.Reading, error) {
	if !c.transport.Connected() {
		return models.Reading{}, errNotConnected("")
	}

	ts := time.Now().Format(time.RFC3339)

	voltage, err := c.transport.Exchange(CmdGetVoltage)
	if err != nil {
		return c.errorReading(ts, err), nil
	}
	current, err := c.transport.Exchange(CmdGetCurrent)
	if err != nil {
		return c.errorReading(ts, err), nil
	}
	serial, err := c.transport.Exchange(CmdGetSerial)
	if err != nil {
		return c.errorReading(ts, err), nil
	}

	return models.Reading{
		Timestamp: ts,
		Voltage:   voltage,
		Current:   current,
		Serial:    serial,
		Status:    models.StatusOK,
	}, nil
}

func (c *Client) errorReading(ts string, err error) models.Reading {
	c.log.Debugw("poll failed, reporting sentinel reading", "err", err)
	return models.Reading{
		Timestamp: ts,
		Voltage:   models.VoltageErrorToken,
		Current:   models.CurrentErrorToken,
		Serial:    models.SerialErrorToken,
		Status:    models.StatusError,
		Error:     err.Error(),
	}
}

// Voltage fetches only the voltage token. Unlike FetchReading it propagates
// the raw failure, for callers that want failure visibility.
func (c *Client) Voltage() (string, error) {
	return c.command(CmdGetVoltage)
}

// Current fetches only the current token, propagating failures.
func (c *Client) Current() (string, error) {
	return c.command(CmdGetCurrent)
}

// Serial fetches only the serial-number token, propagating failures.
func (c *Client) Serial() (string, error) {
	return c.command(CmdGetSerial)
}

func (c *Client) command(cmd string) (string, error) {
	if !c.transport.Connected() {
		return "", errNotConnected("")
	}
	return c.transport.Exchange(cmd)
}

// TestConnection probes the instrument once: connect if needed, query the
// serial number, and report whether it carried the expected prefix. The
// transport is disconnected afterwards regardless of outcome.
func (c *Client) TestConnection() bool {
	if !c.transport.Connected() {
		if err := c.Connect(); err != nil {
			c.log.Warnw("connection test failed", "err", err)
			return false
		}
	}
	defer c.Disconnect()

	serial, err := c.Serial()
	if err != nil {
		c.log.Warnw("connection test failed", "err", err)
		return false
	}
	return strings.HasPrefix(serial, expectedPrefix(CmdGetSerial))
}

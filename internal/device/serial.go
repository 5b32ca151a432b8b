package device

import (
	"strings"
	"time"

	serial "go.bug.st/serial"

	"device_monitor/internal/logger"
)

const (
	// settleDelay gives the line (and a possibly resetting microcontroller)
	// time to come up after open.
	settleDelay = 2 * time.Second

	// emptyRetryDelay is the pause before the single re-read the protocol
	// allows when a response line arrives empty.
	emptyRetryDelay = 100 * time.Millisecond
)

// SerialTransport exchanges CRLF-terminated ASCII commands with the
// instrument over a serial line. Responses are newline-terminated; framing
// is "read until newline or timeout", so the input buffer is drained before
// every send to keep a stale partial line from misaligning the next read.
type SerialTransport struct {
	device  string
	baud    int
	timeout time.Duration
	settle  time.Duration
	log     *logger.Logger

	port      serial.Port
	connected bool
}

// NewSerialTransport builds an unconnected serial transport. Bare device
// names such as "ttyACM0" are resolved under /dev; Windows-style COM names
// are passed through.
func NewSerialTransport(device string, baud int, timeout time.Duration, log *logger.Logger) *SerialTransport {
	if !strings.HasPrefix(device, "/dev/") && !strings.HasPrefix(strings.ToUpper(device), "COM") {
		device = "/dev/" + device
	}
	return &SerialTransport{
		device:  device,
		baud:    baud,
		timeout: timeout,
		settle:  settleDelay,
		log:     log,
	}
}

// Connect opens the line at the configured baud rate (8N1), waits the settle
// delay and discards bytes buffered from a prior session.
func (t *SerialTransport) Connect() error {
	mode := &serial.Mode{
		BaudRate: t.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(t.device, mode)
	if err != nil {
		return &ConnectionError{Endpoint: t.device, Reason: "open failed", Err: err}
	}
	t.port = port

	time.Sleep(t.settle)
	_ = port.ResetInputBuffer()

	if err := port.SetReadTimeout(t.timeout); err != nil {
		_ = port.Close()
		t.port = nil
		return &ConnectionError{Endpoint: t.device, Reason: "set read timeout failed", Err: err}
	}

	t.connected = true
	t.log.Infow("connected to device", "device", t.device, "baud", t.baud)
	return nil
}

// Exchange sends one CRLF-terminated command and returns the validated
// newline-terminated reply.
func (t *SerialTransport) Exchange(cmd string) (string, error) {
	if t.port == nil || !t.connected {
		return "", errNotConnected(t.device)
	}

	// Drop line noise buffered since the last exchange.
	_ = t.port.ResetInputBuffer()

	if _, err := t.port.Write([]byte(cmd + "\r\n")); err != nil {
		t.connected = false
		return "", &ConnectionError{Endpoint: t.device, Reason: "write failed", Err: err}
	}
	t.log.Debugw("command sent", "cmd", cmd)

	resp, err := t.readLine()
	if err != nil {
		t.connected = false
		return "", &ConnectionError{Endpoint: t.device, Reason: "read failed", Err: err}
	}
	if resp == "" {
		// The line was quiet for a full timeout; give the instrument one
		// more chance before rejecting the exchange.
		time.Sleep(emptyRetryDelay)
		if resp, err = t.readLine(); err != nil {
			t.connected = false
			return "", &ConnectionError{Endpoint: t.device, Reason: "read failed", Err: err}
		}
	}
	t.log.Debugw("response received", "cmd", cmd, "resp", resp)

	if err := validateResponse(cmd, resp); err != nil {
		return "", err
	}
	return resp, nil
}

// readLine accumulates bytes until a newline. The port read timeout bounds
// each chunk; a zero-byte read means the deadline expired, in which case
// whatever arrived so far is returned for the codec to judge.
func (t *SerialTransport) readLine() (string, error) {
	var line []byte
	buf := make([]byte, 64)
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return strings.TrimSpace(string(line)), nil
		}
		for i := 0; i < n; i++ {
			if buf[i] == '\n' {
				return strings.TrimSpace(string(line)), nil
			}
			line = append(line, buf[i])
		}
	}
}

// Disconnect closes the line. Safe to call repeatedly.
func (t *SerialTransport) Disconnect() {
	if t.port != nil {
		_ = t.port.Close()
		t.port = nil
		t.log.Infow("disconnected from device", "device", t.device)
	}
	t.connected = false
}

// Connected reports the transport's view of the link state.
func (t *SerialTransport) Connected() bool { return t.connected }

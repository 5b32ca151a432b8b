package device

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"device_monitor/internal/logger"
)

const maxDatagram = 1024

// UDPTransport exchanges bare ASCII commands with the instrument over a
// datagram socket. Requests carry no terminator; each response is a single
// packet.
type UDPTransport struct {
	host    string
	port    int
	timeout time.Duration
	log     *logger.Logger

	conn      *net.UDPConn
	connected bool
}

// NewUDPTransport builds an unconnected UDP transport.
func NewUDPTransport(host string, port int, timeout time.Duration, log *logger.Logger) *UDPTransport {
	return &UDPTransport{host: host, port: port, timeout: timeout, log: log}
}

func (t *UDPTransport) endpoint() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

// Connect opens the socket and probes the instrument with a serial query.
// The link counts as up only after a structurally valid S_ reply; no reply
// within the timeout is a TimeoutError, anything else a ConnectionError.
func (t *UDPTransport) Connect() error {
	raddr, err := net.ResolveUDPAddr("udp", t.endpoint())
	if err != nil {
		return &ConnectionError{Endpoint: t.endpoint(), Reason: "resolve failed", Err: err}
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return &ConnectionError{Endpoint: t.endpoint(), Reason: "socket open failed", Err: err}
	}
	t.conn = conn

	resp, err := t.exchange(CmdGetSerial)
	if err != nil {
		t.close()
		if IsTimeout(err) {
			return err
		}
		var pe *ProtocolError
		if errors.As(err, &pe) {
			return &ConnectionError{Endpoint: t.endpoint(), Reason: "probe rejected: " + strconv.Quote(pe.Response)}
		}
		return err
	}

	t.connected = true
	t.log.Debugw("connected to device", "endpoint", t.endpoint(), "probe", resp)
	return nil
}

// Exchange sends one command and returns the validated single-packet reply.
func (t *UDPTransport) Exchange(cmd string) (string, error) {
	if t.conn == nil || !t.connected {
		return "", errNotConnected(t.endpoint())
	}
	return t.exchange(cmd)
}

func (t *UDPTransport) exchange(cmd string) (string, error) {
	// Discard packets left over from an earlier exchange so a stale reply
	// cannot be taken for the answer to this command.
	t.drain()

	if _, err := t.conn.Write([]byte(cmd)); err != nil {
		t.connected = false
		return "", &ConnectionError{Endpoint: t.endpoint(), Reason: "send failed", Err: err}
	}
	t.log.Debugw("command sent", "cmd", cmd)

	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		t.connected = false
		return "", &ConnectionError{Endpoint: t.endpoint(), Reason: "set deadline failed", Err: err}
	}

	buf := make([]byte, maxDatagram)
	n, err := t.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return "", &TimeoutError{Command: cmd, Endpoint: t.endpoint(), Err: err}
		}
		t.connected = false
		return "", &ConnectionError{Endpoint: t.endpoint(), Reason: "receive failed", Err: err}
	}

	resp := strings.TrimSpace(string(buf[:n]))
	t.log.Debugw("response received", "cmd", cmd, "resp", resp)

	if err := validateResponse(cmd, resp); err != nil {
		return "", err
	}
	return resp, nil
}

// drain reads and drops any packets already queued on the socket.
func (t *UDPTransport) drain() {
	buf := make([]byte, maxDatagram)
	for {
		if err := t.conn.SetReadDeadline(time.Now()); err != nil {
			return
		}
		if _, err := t.conn.Read(buf); err != nil {
			return
		}
	}
}

// Disconnect closes the socket. Safe to call repeatedly.
func (t *UDPTransport) Disconnect() {
	t.close()
	t.log.Debugw("disconnected from device", "endpoint", t.endpoint())
}

func (t *UDPTransport) close() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
	t.connected = false
}

// Connected reports the transport's view of the link state.
func (t *UDPTransport) Connected() bool { return t.connected }

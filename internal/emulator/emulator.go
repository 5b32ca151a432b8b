// Package emulator implements a UDP responder that stands in for the
// instrument during development and end-to-end tests.
package emulator

import (
	"context"
	"net"
	"strings"
	"time"

	"device_monitor/internal/logger"
)

const (
	maxDatagram = 1024

	// pollInterval bounds how long a shutdown waits for the read loop to
	// notice context cancellation.
	pollInterval = time.Second
)

// unknownCommandReply is returned verbatim for anything outside the protocol.
const unknownCommandReply = "ERROR: Unknown command"

// DefaultResponses are the static instrument replies.
var DefaultResponses = map[string]string{
	"GET_V": "V_12V",
	"GET_A": "A_1A",
	"GET_S": "S_DSA123",
}

// Server answers protocol commands on a UDP socket. Responses are looked up
// per command, so tests can inject malformed or empty replies.
type Server struct {
	responses map[string]string
	log       *logger.Logger
	conn      net.PacketConn
}

// New builds a server answering with the given command->reply table.
func New(responses map[string]string, log *logger.Logger) *Server {
	if responses == nil {
		responses = DefaultResponses
	}
	return &Server{responses: responses, log: log}
}

// Listen binds the socket. addr follows net.ListenPacket conventions; use
// "127.0.0.1:0" to let the kernel pick a free port.
func (s *Server) Listen(addr string) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	s.conn = conn
	s.log.Infow("device emulator listening", "addr", conn.LocalAddr().String())
	return nil
}

// Addr returns the bound address. Valid only after Listen.
func (s *Server) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Serve answers commands until ctx is canceled. Listen must have been
// called first.
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()

	buf := make([]byte, maxDatagram)
	for {
		if ctx.Err() != nil {
			return nil
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		cmd := strings.ToUpper(strings.TrimSpace(string(buf[:n])))
		resp, ok := s.responses[cmd]
		if !ok {
			s.log.Warnw("unknown command", "cmd", cmd, "from", addr.String())
			resp = unknownCommandReply
		}

		if _, err := s.conn.WriteTo([]byte(resp), addr); err != nil {
			s.log.Errorw("reply failed", "cmd", cmd, "err", err)
			continue
		}
		s.log.Debugw("handled command", "cmd", cmd, "resp", resp, "from", addr.String())
	}
}

// Close releases the socket. Safe to call repeatedly.
func (s *Server) Close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

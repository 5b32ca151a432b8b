package emulator

import (
	"context"
	"net"
	"testing"
	"time"

	"device_monitor/internal/logger"
)

const testTimeout = 300 * time.Millisecond

func startServer(t *testing.T, responses map[string]string) net.Addr {
	t.Helper()

	srv := New(responses, logger.NewNop())
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		srv.Close()
		<-done
	})

	return srv.Addr()
}

func exchange(t *testing.T, addr net.Addr, cmd string) string {
	t.Helper()

	conn, err := net.Dial("udp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(cmd)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(testTimeout))

	buf := make([]byte, maxDatagram)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read reply to %q: %v", cmd, err)
	}
	return string(buf[:n])
}

func TestServer_DefaultResponses(t *testing.T) {
	addr := startServer(t, nil)

	cases := []struct {
		cmd  string
		want string
	}{
		{"GET_V", "V_12V"},
		{"GET_A", "A_1A"},
		{"GET_S", "S_DSA123"},
		{"  get_s \r\n", "S_DSA123"}, // commands are trimmed and case-folded
	}

	for _, tc := range cases {
		if got := exchange(t, addr, tc.cmd); got != tc.want {
			t.Errorf("%q -> %q, want %q", tc.cmd, got, tc.want)
		}
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	addr := startServer(t, nil)

	if got := exchange(t, addr, "GET_X"); got != unknownCommandReply {
		t.Errorf("GET_X -> %q, want %q", got, unknownCommandReply)
	}
}

func TestServer_InjectedResponses(t *testing.T) {
	addr := startServer(t, map[string]string{"GET_V": "BOGUS"})

	if got := exchange(t, addr, "GET_V"); got != "BOGUS" {
		t.Errorf("GET_V -> %q, want injected reply", got)
	}
}

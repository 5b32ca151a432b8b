package device

import (
	"errors"
	"testing"
)

func TestExpectedPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cmd  string
		want string
	}{
		{CmdGetVoltage, "V_"},
		{CmdGetCurrent, "A_"},
		{CmdGetSerial, "S_"},
		{"NOSEP", ""},
		{"TRAILING_", ""},
	}

	for _, tc := range cases {
		if got := expectedPrefix(tc.cmd); got != tc.want {
			t.Errorf("expectedPrefix(%q) = %q, want %q", tc.cmd, got, tc.want)
		}
	}
}

func TestValidateResponse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cmd     string
		resp    string
		wantErr bool
	}{
		{name: "voltage ok", cmd: CmdGetVoltage, resp: "V_12V"},
		{name: "current ok", cmd: CmdGetCurrent, resp: "A_1A"},
		{name: "serial ok", cmd: CmdGetSerial, resp: "S_DSA123"},
		{name: "prefix only is accepted", cmd: CmdGetVoltage, resp: "V_"},
		{name: "empty rejected", cmd: CmdGetVoltage, resp: "", wantErr: true},
		{name: "wrong prefix rejected", cmd: CmdGetVoltage, resp: "A_1A", wantErr: true},
		{name: "missing separator rejected", cmd: CmdGetCurrent, resp: "A1A", wantErr: true},
		{name: "error text rejected", cmd: CmdGetSerial, resp: "ERROR: Unknown command", wantErr: true},
		{name: "undecodable bytes rejected", cmd: CmdGetVoltage, resp: "V_\xff\xfe", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validateResponse(tc.cmd, tc.resp)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error for response %q", tc.resp)
			}
			var pe *ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProtocolError, got %T: %v", err, err)
			}
			if pe.Command != tc.cmd {
				t.Errorf("ProtocolError.Command = %q, want %q", pe.Command, tc.cmd)
			}
		})
	}
}

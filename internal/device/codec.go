package device

import (
	"strings"
	"unicode/utf8"
)

// Commands understood by the instrument. The protocol has exactly these
// three; the numeric payload after the reply prefix is opaque to us.
const (
	CmdGetVoltage = "GET_V"
	CmdGetCurrent = "GET_A"
	CmdGetSerial  = "GET_S"
)

// expectedPrefix derives the reply prefix from a command by taking the token
// after the separator: GET_V -> "V_".
func expectedPrefix(cmd string) string {
	i := strings.IndexByte(cmd, '_')
	if i < 0 || i+1 >= len(cmd) {
		return ""
	}
	return cmd[i+1:] + "_"
}

// validateResponse accepts a reply iff it is non-empty, decodable and
// carries the prefix matching the command. Anything else is a protocol
// violation; timeouts and transport failures are reported separately.
func validateResponse(cmd, resp string) error {
	if resp == "" {
		return &ProtocolError{Command: cmd, Response: resp}
	}
	if !utf8.ValidString(resp) {
		return &ProtocolError{Command: cmd, Response: resp}
	}
	if !strings.HasPrefix(resp, expectedPrefix(cmd)) {
		return &ProtocolError{Command: cmd, Response: resp}
	}
	return nil
}

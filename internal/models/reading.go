package models

// Reading statuses.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Sentinel tokens reported in place of real values when a poll cycle fails
// partway through the command sequence.
const (
	VoltageErrorToken = "V_ERROR"
	CurrentErrorToken = "A_ERROR"
	SerialErrorToken  = "S_ERROR"
)

// Reading is one complete sample taken from the instrument in a single poll
// cycle. It is constructed exactly once by the device client and never
// mutated afterwards. Error is set iff Status is ERROR.
type Reading struct {
	Timestamp string `json:"timestamp"`       // RFC 3339
	Voltage   string `json:"voltage"`         // e.g. "V_12V"
	Current   string `json:"current"`         // e.g. "A_1A"
	Serial    string `json:"serial"`          // e.g. "S_DSA123"
	Status    string `json:"status"`          // OK | ERROR
	Error     string `json:"error,omitempty"` // captured failure message
}

// OK reports whether the reading completed without a device failure.
func (r Reading) OK() bool {
	return r.Status == StatusOK
}

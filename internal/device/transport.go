package device

// Transport carries raw command/response bytes to and from the instrument.
// Implementations validate replies against the codec before returning them,
// and drop their connection flag on transport-level I/O failure so the
// client never trusts a stale connect.
type Transport interface {
	// Connect establishes the link. For the UDP transport this includes a
	// protocol probe; for the serial transport it opens and settles the line.
	Connect() error

	// Exchange sends one command and returns the validated response.
	Exchange(cmd string) (string, error)

	// Disconnect releases the link. Idempotent, never fails visibly.
	Disconnect()

	// Connected reports the transport's own view of the link state.
	Connected() bool
}

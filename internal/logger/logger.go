package logger

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// New builds a logger writing to stdout at the given level. When file is
// non-empty the same records are also appended to that file. The logger is
// passed explicitly to every component that needs it; there is no package
// level instance.
func New(level, file string) (*Logger, error) {
	return newZapLogger(level, file)
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() *Logger {
	return newNopLogger()
}

package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for adapter internals (ffmpeg arguments, seek positions).
	LevelDebug LogLevel = iota
	// LevelInfo is for job lifecycle messages.
	LevelInfo
	// LevelWarn is for problems that do not end the job.
	LevelWarn
	// LevelError is for terminal job failures.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = map[LogLevel]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelQuiet: "quiet",
}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLogLevel parses a string into a LogLevel, defaulting to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for level, name := range levelNames {
		if name == s {
			return level
		}
	}
	return LevelInfo
}

// Logger abstracts logging operations with multi-language support.
// The msg parameter is a message key that may be translated.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}

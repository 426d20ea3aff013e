package observability

import "log/slog"

// Level is an event severity expressed as an OpenTelemetry SeverityNumber,
// so OTelObserver can forward it unchanged.
type Level int

// Severities emitted by this module. Each sits at the bottom of its OTel
// range.
const (
	LevelVerbose Level = 5
	LevelInfo    Level = 9
	LevelWarning Level = 13
	LevelError   Level = 17
)

// severity describes one OTel SeverityNumber range.
type severity struct {
	upper Level
	text  string
	slog  slog.Level
}

var severities = []severity{
	{upper: 4, text: "TRACE", slog: slog.LevelDebug},
	{upper: 8, text: "DEBUG", slog: slog.LevelDebug},
	{upper: 12, text: "INFO", slog: slog.LevelInfo},
	{upper: 16, text: "WARN", slog: slog.LevelWarn},
	{upper: 20, text: "ERROR", slog: slog.LevelError},
}

var fatal = severity{upper: 24, text: "FATAL", slog: slog.LevelError}

func (l Level) severity() severity {
	for _, s := range severities {
		if l <= s.upper {
			return s
		}
	}
	return fatal
}

// String returns the OTel severity text, e.g. "DEBUG" for LevelVerbose.
func (l Level) String() string {
	return l.severity().text
}

// SlogLevel returns the slog level SlogObserver logs the event at.
func (l Level) SlogLevel() slog.Level {
	return l.severity().slog
}

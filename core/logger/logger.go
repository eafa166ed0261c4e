// Package logger is the command-line facing logging facade. Errors logged
// through Errorf are returned tagged so the top-level command can report them
// under the tag of the component that produced them.
package logger

import (
	"fmt"

	"github.com/hyperterse/graphgate/core/infrastructure/logging"
)

const (
	LogLevelError = logging.LogLevelError
	LogLevelWarn  = logging.LogLevelWarn
	LogLevelInfo  = logging.LogLevelInfo
	LogLevelDebug = logging.LogLevelDebug
	LogLevelTrace = logging.LogLevelTrace
)

func SetLogLevel(level int) { logging.SetLogLevel(level) }

func GetLogLevel() int { return logging.GetLogLevel() }

func SetTagFilter(filterStr string) { logging.SetTagFilter(filterStr) }

func SetLogFile() (string, error) { return logging.SetLogFile() }

func CloseLogFile() error { return logging.CloseLogFile() }

// Logger is a tagged logger whose Errorf doubles as an error constructor
type Logger struct {
	tag string
	logging.Logger
}

// New creates a new logger instance with a tag
func New(tag string) *Logger {
	return &Logger{
		tag:    tag,
		Logger: logging.New(tag),
	}
}

// Errorf builds an error from format (supporting %w) tagged with the
// logger's tag. The error is not logged here; the caller that finally
// handles it decides.
func (l *Logger) Errorf(format string, args ...any) error {
	return WithTag(l.tag, fmt.Errorf(format, args...))
}

// PrintError logs err under title when err is non-nil
func (l *Logger) PrintError(title string, err error) {
	if err == nil {
		return
	}
	l.Logger.Errorf("%s: %v", title, err)
}

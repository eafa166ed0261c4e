package logging

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/hyperterse/graphgate/core/domain/interfaces"
)

const (
	LogLevelError = 1
	LogLevelWarn  = 2
	LogLevelInfo  = 3
	LogLevelDebug = 4
	// LogLevelTrace also emits raw query text, which may carry secrets.
	LogLevelTrace = 5
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z"

var (
	globalLogLevel = LogLevelInfo
	logLevelMutex  sync.RWMutex

	tagFilter      []string
	tagFilterMutex sync.RWMutex

	logFile      *os.File
	logFileMutex sync.RWMutex
	logWriter    io.Writer = os.Stdout
)

func init() {
	zerolog.SetGlobalLevel(convertLogLevel(globalLogLevel))
}

// SetLogLevel sets the global log level. Out of range values are ignored.
func SetLogLevel(level int) {
	logLevelMutex.Lock()
	defer logLevelMutex.Unlock()
	if level >= LogLevelError && level <= LogLevelTrace {
		globalLogLevel = level
		zerolog.SetGlobalLevel(convertLogLevel(level))
	}
}

// GetLogLevel returns the current global log level
func GetLogLevel() int {
	logLevelMutex.RLock()
	defer logLevelMutex.RUnlock()
	return globalLogLevel
}

// SetTagFilter sets the tag filter from a comma-separated string.
// Entries prefixed with "-" exclude a tag and its "tag:" children.
func SetTagFilter(filterStr string) {
	tagFilterMutex.Lock()
	defer tagFilterMutex.Unlock()

	if filterStr == "" {
		tagFilter = nil
		return
	}

	tags := strings.Split(filterStr, ",")
	tagFilter = make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tagFilter = append(tagFilter, tag)
		}
	}
}

func matchesTag(tag, filter string) bool {
	return tag == filter || strings.HasPrefix(tag, filter+":")
}

// shouldLogTag checks if a tag should be logged based on the filter
func shouldLogTag(tag string) bool {
	tagFilterMutex.RLock()
	defer tagFilterMutex.RUnlock()

	if len(tagFilter) == 0 {
		return true
	}

	hasInclusion := false
	included := false
	for _, filterTag := range tagFilter {
		if excluded, ok := strings.CutPrefix(filterTag, "-"); ok {
			if matchesTag(tag, excluded) {
				return false
			}
			continue
		}
		hasInclusion = true
		if matchesTag(tag, filterTag) {
			included = true
		}
	}

	return included || !hasInclusion
}

// SetLogFile tees all output into a fresh file under /tmp/.graphgate/logs
// and returns its path.
func SetLogFile() (string, error) {
	logFileMutex.Lock()
	defer logFileMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), ".graphgate", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}

	filePath := filepath.Join(logDir, "graphgate-"+logFileHash()+".log")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", err
	}

	logFile = file
	logWriter = io.MultiWriter(os.Stdout, file)
	return filePath, nil
}

// CloseLogFile closes the log file if it's open
func CloseLogFile() error {
	logFileMutex.Lock()
	defer logFileMutex.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	logWriter = os.Stdout
	return err
}

// SetOutput redirects every logger created afterwards to w
func SetOutput(w io.Writer) {
	logFileMutex.Lock()
	defer logFileMutex.Unlock()
	logWriter = w
}

func currentWriter() io.Writer {
	logFileMutex.RLock()
	defer logFileMutex.RUnlock()
	return logWriter
}

func logFileHash() string {
	randomBytes := make([]byte, 8)
	rand.Read(randomBytes)
	hash := sha256.Sum256(fmt.Appendf(nil, "%d-%d-%x", time.Now().UnixNano(), os.Getpid(), randomBytes))
	return hex.EncodeToString(hash[:])[:8]
}

// ZerologLogger implements the Logger interface using zerolog
type ZerologLogger struct {
	tag    string
	logger zerolog.Logger
}

// Logger is the interface exported from this package
type Logger = interfaces.Logger

// New creates a new logger instance with a tag
func New(tag string) Logger {
	if !shouldLogTag(tag) {
		return &noOpLogger{}
	}

	var output io.Writer = currentWriter()
	if output == os.Stdout && isInteractive() {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: consoleTimeFormat}
	}

	return &ZerologLogger{
		tag:    tag,
		logger: zerolog.New(output).With().Timestamp().Str("tag", tag).Logger(),
	}
}

// isInteractive checks if the output is going to a terminal
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func convertLogLevel(level int) zerolog.Level {
	switch level {
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelTrace:
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func enabled(level int) bool {
	logLevelMutex.RLock()
	defer logLevelMutex.RUnlock()
	return level <= globalLogLevel
}

// WithField returns a child logger that adds key=value to every entry
func (l *ZerologLogger) WithField(key string, value any) Logger {
	return &ZerologLogger{
		tag:    l.tag,
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

func (l *ZerologLogger) Error(message string) {
	if enabled(LogLevelError) {
		l.logger.Error().Msg(message)
	}
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	if enabled(LogLevelError) {
		l.logger.Error().Msgf(format, args...)
	}
}

func (l *ZerologLogger) Warn(message string) {
	if enabled(LogLevelWarn) {
		l.logger.Warn().Msg(message)
	}
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	if enabled(LogLevelWarn) {
		l.logger.Warn().Msgf(format, args...)
	}
}

func (l *ZerologLogger) Info(message string) {
	if enabled(LogLevelInfo) {
		l.logger.Info().Msg(message)
	}
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	if enabled(LogLevelInfo) {
		l.logger.Info().Msgf(format, args...)
	}
}

// Success logs at INFO level but always shows regardless of log level
func (l *ZerologLogger) Success(message string) {
	l.logger.WithLevel(zerolog.NoLevel).Str("status", "success").Msg(message)
}

// Successf logs at INFO level but always shows regardless of log level
func (l *ZerologLogger) Successf(format string, args ...any) {
	l.logger.WithLevel(zerolog.NoLevel).Str("status", "success").Msgf(format, args...)
}

func (l *ZerologLogger) Debug(message string) {
	if enabled(LogLevelDebug) {
		l.logger.Debug().Msg(message)
	}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	if enabled(LogLevelDebug) {
		l.logger.Debug().Msgf(format, args...)
	}
}

func (l *ZerologLogger) Trace(message string) {
	if enabled(LogLevelTrace) {
		l.logger.Trace().Msg(message)
	}
}

func (l *ZerologLogger) Tracef(format string, args ...any) {
	if enabled(LogLevelTrace) {
		l.logger.Trace().Msgf(format, args...)
	}
}

// PrintValidationErrors logs a numbered list of validation errors
func (l *ZerologLogger) PrintValidationErrors(errors []string) {
	if len(errors) == 0 {
		return
	}
	l.Errorf("Validation Errors (%d)", len(errors))
	for i, err := range errors {
		l.Errorf("  %d. %s", i+1, err)
	}
}

// noOpLogger is a no-op logger for filtered tags
type noOpLogger struct{}

func (n *noOpLogger) WithField(string, any) Logger   { return n }
func (n *noOpLogger) Error(string)                   {}
func (n *noOpLogger) Errorf(string, ...any)          {}
func (n *noOpLogger) Warn(string)                    {}
func (n *noOpLogger) Warnf(string, ...any)           {}
func (n *noOpLogger) Info(string)                    {}
func (n *noOpLogger) Infof(string, ...any)           {}
func (n *noOpLogger) Success(string)                 {}
func (n *noOpLogger) Successf(string, ...any)        {}
func (n *noOpLogger) Debug(string)                   {}
func (n *noOpLogger) Debugf(string, ...any)          {}
func (n *noOpLogger) Trace(string)                   {}
func (n *noOpLogger) Tracef(string, ...any)          {}
func (n *noOpLogger) PrintValidationErrors([]string) {}

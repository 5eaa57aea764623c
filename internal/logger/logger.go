// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"
	"github.com/sirupsen/logrus"
)

// Logger configuration
type Config struct {
	LogsDirectory string
	LogFileFormat string // strftime pattern, e.g. "storebot_%Y-%m-%d.log"
	TimeZone      string
	Verbose       bool
}

var (
	initialized int32 // 0 = not initialized, 1 = initialized
	logger      *logrus.Logger
	timeZone    = time.Local
	logFilePath string
	mu          sync.Mutex // protect against concurrent initialization
)

// SetupLogger initializes the logger with file and console output.
func SetupLogger(config Config) error {
	mu.Lock()
	defer mu.Unlock()

	if atomic.LoadInt32(&initialized) == 1 {
		return fmt.Errorf("logger already initialized")
	}

	if config.TimeZone == "" {
		config.TimeZone = "Local"
	}
	if config.LogFileFormat == "" {
		config.LogFileFormat = "storebot_%Y-%m-%d.log"
	}

	loc, err := time.LoadLocation(config.TimeZone)
	if err != nil {
		return fmt.Errorf("failed to load time zone '%s': %w", config.TimeZone, err)
	}
	timeZone = loc

	if err := os.MkdirAll(config.LogsDirectory, 0775); err != nil {
		return fmt.Errorf("failed to create logs directory '%s': %w", config.LogsDirectory, err)
	}

	logFileName := strftime.Format(config.LogFileFormat, time.Now().In(loc))

	// Respect whether LogFileFormat is an absolute path or not
	if filepath.IsAbs(logFileName) {
		logFilePath = logFileName
	} else {
		logFilePath = filepath.Join(config.LogsDirectory, logFileName)
	}

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0664)
	if err != nil {
		return fmt.Errorf("failed to open log file '%s': %w", logFilePath, err)
	}

	l := logrus.New()
	l.SetOutput(io.MultiWriter(os.Stdout, logFile))
	l.SetFormatter(formatterFor(os.Stdout))
	if config.Verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	logger = l

	atomic.StoreInt32(&initialized, 1)
	LogInfo("Logger initialized, writing to %s", logFilePath)
	return nil
}

// formatterFor picks human readable output on a terminal and JSON lines otherwise
// (process managers and log shippers).
func formatterFor(f *os.File) logrus.Formatter {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05 MST",
		}
	}
	return &logrus.JSONFormatter{TimestampFormat: time.RFC3339}
}

func GetLogFilePath() string {
	return logFilePath
}

func IsInitialized() bool {
	return atomic.LoadInt32(&initialized) == 1
}

// base returns the configured logger, or logrus' standard logger before SetupLogger
// has run (tests, early CLI output).
func base() *logrus.Logger {
	if !IsInitialized() {
		return logrus.StandardLogger()
	}
	return logger
}

func LogMessage(level logrus.Level, message string, v ...interface{}) {
	_, file, line, _ := runtime.Caller(2)
	base().WithFields(logrus.Fields{
		"caller": fmt.Sprintf("%s:%d", filepath.Base(file), line),
	}).WithTime(time.Now().In(timeZone)).Logf(level, message, v...)
}

func LogDebug(message string, v ...interface{}) { LogMessage(logrus.DebugLevel, message, v...) }
func LogInfo(message string, v ...interface{})  { LogMessage(logrus.InfoLevel, message, v...) }
func LogWarn(message string, v ...interface{})  { LogMessage(logrus.WarnLevel, message, v...) }
func LogError(message string, v ...interface{}) { LogMessage(logrus.ErrorLevel, message, v...) }

// WithFields returns an entry carrying structured fields, for per-update logging.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return base().WithFields(logrus.Fields(fields))
}

// SetOutput redirects log output; used by tests to capture lines.
func SetOutput(w io.Writer) {
	base().SetOutput(w)
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled, structured logging for pipeline components.
// Console output goes to stderr (or Options.Writer); when Options.Dir is set,
// every entry is also written as JSON to <dir>/<run-id>-criteria.log.
type Logger struct {
	runID     string
	component string
	sugar     *zap.SugaredLogger
	file      *os.File
	logPath   string
	closeOnce *sync.Once
}

// Options configures a Logger.
type Options struct {
	// Verbosity is one of quiet, normal, verbose, debug.
	Verbosity string
	// Dir enables the per-run JSON log file.
	Dir string
	// Writer receives console output; defaults to os.Stderr.
	Writer io.Writer
}

// ParseVerbosity maps a verbosity name to a zap level.
func ParseVerbosity(v string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "quiet":
		return zapcore.WarnLevel, nil
	case "", "normal":
		return zapcore.InfoLevel, nil
	case "verbose", "debug":
		return zapcore.DebugLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown verbosity %q", v)
	}
}

// New creates a logger for a component. Each call starts a new run id.
//
// If the log file cannot be opened, the logger still writes to the console
// and the error is returned alongside it so callers can warn.
func New(component string, opts Options) (*Logger, error) {
	level, err := ParseVerbosity(opts.Verbosity)
	if err != nil {
		return nil, err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level),
	}

	l := &Logger{
		runID:     uuid.New().String(),
		component: component,
		closeOnce: &sync.Once{},
	}

	var fileErr error
	if opts.Dir != "" {
		fileErr = l.openFile(opts.Dir)
		if fileErr == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(l.file),
				zapcore.DebugLevel,
			))
		}
	}

	base := zap.New(zapcore.NewTee(cores...)).Named(component).With(zap.String("run_id", l.runID))
	l.sugar = base.Sugar()

	if fileErr != nil {
		l.Warnf("file logging disabled: %v", fileErr)
	}
	return l, fileErr
}

func (l *Logger) openFile(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, l.runID+"-criteria.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.file = file
	l.logPath = path
	return nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		runID:     uuid.New().String(),
		sugar:     zap.NewNop().Sugar(),
		closeOnce: &sync.Once{},
	}
}

// With returns a child logger for a sub-component sharing the run id and
// outputs.
func (l *Logger) With(component string) *Logger {
	child := *l
	child.component = component
	child.sugar = l.sugar.Named(component)
	return &child
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Infow logs a message with structured key/value pairs.
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// RunID returns the id shared by every entry of this run.
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the JSON log file path, or "" when file logging is off.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes buffered entries and closes the log file. Safe to call
// multiple times; child loggers share the parent's file.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.sugar.Sync()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
